package service

import "github.com/voronovmaksim88/KIS3-v3r3/internal/importer"

// ImportEntity resolves the public entity name and runs a single
// entity-type import.
func (s *Service) ImportEntity(name string) (importer.Result, error) {
	et, err := importer.ParseEntityType(name)
	if err != nil {
		return importer.Result{}, err
	}
	return s.runner.ImportEntity(et), nil
}

func (s *Service) ImportAll() importer.RunReport {
	return s.runner.ImportAll()
}
