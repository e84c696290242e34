package importer

import (
	"time"

	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

const cabinetEquipmentType = "Корпус шкафа"

func parsePriceDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// importCabinets reconciles equipment cabinets keyed by vendor code.
// Materials, IP ratings and the cabinet equipment type are synthesized
// when missing; manufacturer and currency degrade to null with a
// warning, since neither is required.
func (im *Importer) importCabinets() Result {
	rows, err := im.src.Cabinets()
	if err != nil {
		return sourceErr(err)
	}
	if len(rows) == 0 {
		return errorResult("source returned no rows")
	}

	var res Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		cat, err := newCatalog(tx, withManufs, withEquipType, withCurrency, withMaterials, withIPRatings)
		if err != nil {
			return err
		}

		for _, r := range rows {
			if r.Material == "" {
				continue
			}
			if _, ok := cat.Materials[r.Material]; !ok {
				m := models.CabinetMaterial{Name: r.Material}
				if err := tx.Create(&m).Error; err != nil {
					return err
				}
				cat.Materials[r.Material] = m.ID
				im.warnf("boxes", "material %q was missing, created", r.Material)
			}
		}
		for _, r := range rows {
			if r.IP == "" {
				continue
			}
			if _, ok := cat.IPRatings[r.IP]; !ok {
				ip := models.IPRating{Name: r.IP}
				if err := tx.Create(&ip).Error; err != nil {
					return err
				}
				cat.IPRatings[r.IP] = ip.ID
				im.warnf("boxes", "IP rating %q was missing, created", r.IP)
			}
		}
		typeID, ok := cat.EquipTypes[cabinetEquipmentType]
		if !ok {
			et := models.EquipmentType{Name: cabinetEquipmentType}
			if err := tx.Create(&et).Error; err != nil {
				return err
			}
			typeID = et.ID
			im.warnf("boxes", "equipment type %q was missing, created", cabinetEquipmentType)
		}

		var existing []models.ControlCabinet
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		byVendorCode := make(map[string]models.ControlCabinet, len(existing))
		for _, c := range existing {
			if c.VendorCode != "" {
				byVendorCode[c.VendorCode] = c
			}
		}

		for _, r := range rows {
			if r.VendorCode == "" {
				im.warnf("boxes", "cabinet %q has no vendor code, skipped", r.Name)
				continue
			}
			var manufacturerID *uint
			if r.Manufacturer != "" {
				if id, ok := cat.Manufacturers[r.Manufacturer]; ok {
					manufacturerID = &id
				} else {
					im.warnf("boxes", "manufacturer %q not found for cabinet %q", r.Manufacturer, r.Name)
				}
			}
			var currencyID *uint
			if r.Currency != "" {
				if id, ok := cat.Currencies[r.Currency]; ok {
					currencyID = &id
				} else {
					im.warnf("boxes", "currency %q not found for cabinet %q", r.Currency, r.Name)
				}
			}
			materialID, ok := cat.Materials[r.Material]
			if !ok {
				im.warnf("boxes", "material %q not found for cabinet %q, skipped", r.Material, r.Name)
				continue
			}
			ipID, ok := cat.IPRatings[r.IP]
			if !ok {
				im.warnf("boxes", "IP rating %q not found for cabinet %q, skipped", r.IP, r.Name)
				continue
			}
			priceDate := parsePriceDate(r.PriceDate)
			if r.PriceDate != "" && priceDate == nil {
				im.warnf("boxes", "bad price date %q for cabinet %q", r.PriceDate, r.Name)
			}

			current, exists := byVendorCode[r.VendorCode]
			if !exists {
				cab := models.ControlCabinet{
					Name:           r.Name,
					Model:          r.Model,
					VendorCode:     r.VendorCode,
					Description:    r.Description,
					TypeID:         typeID,
					ManufacturerID: manufacturerID,
					Price:          r.Price,
					CurrencyID:     currencyID,
					Relevance:      r.Relevance,
					PriceDate:      priceDate,
					MaterialID:     materialID,
					IPRatingID:     ipID,
					Height:         r.Height,
					Width:          r.Width,
					Depth:          r.Depth,
				}
				if err := tx.Create(&cab).Error; err != nil {
					return err
				}
				res.Added++
				continue
			}

			changes := map[string]interface{}{}
			if current.Name != r.Name {
				changes["name"] = r.Name
			}
			if current.Model != r.Model {
				changes["model"] = r.Model
			}
			if current.Description != r.Description {
				changes["description"] = r.Description
			}
			if !uintPtrEqual(current.ManufacturerID, manufacturerID) {
				changes["manufacturer_id"] = manufacturerID
			}
			if current.Price != r.Price {
				changes["price"] = r.Price
			}
			if !uintPtrEqual(current.CurrencyID, currencyID) {
				changes["currency_id"] = currencyID
			}
			if current.Relevance != r.Relevance {
				changes["relevance"] = r.Relevance
			}
			if !im.momentsEqual(current.PriceDate, priceDate) {
				changes["price_date"] = priceDate
			}
			if current.MaterialID != materialID {
				changes["material_id"] = materialID
			}
			if current.IPRatingID != ipID {
				changes["ip_rating_id"] = ipID
			}
			if current.Height != r.Height {
				changes["height"] = r.Height
			}
			if current.Width != r.Width {
				changes["width"] = r.Width
			}
			if current.Depth != r.Depth {
				changes["depth"] = r.Depth
			}
			if len(changes) == 0 {
				res.Unchanged++
				continue
			}
			if err := tx.Model(&models.ControlCabinet{}).Where("id = ?", current.ID).Updates(changes).Error; err != nil {
				return err
			}
			im.warnf("boxes", "updated cabinet %q: %s", r.VendorCode, changedFields(changes))
			res.Updated++
		}
		return nil
	})
	if err != nil {
		return errorResult(err.Error())
	}
	res.Status = StatusSuccess
	return res
}
