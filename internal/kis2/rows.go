package kis2

// Typed collection builders. Each one denormalizes the id references of a
// raw source collection into the human-readable names the import engine
// resolves against, mirroring what the source system's own UI shows.

type ManufacturerRow struct {
	Name    string
	Country string
}

type CounterpartyRow struct {
	Name string
	Form string
	City string
	Note string
}

type PersonRow struct {
	Surname    string
	Name       string
	Patronymic string
	Phone      string
	Email      string
	Company    string
}

type WorkRow struct {
	Name        string
	Description string
}

type OrderRow struct {
	Serial         string
	Name           string
	Customer       string
	Priority       int
	Status         string
	StartMoment    string
	DeadlineMoment string
	EndMoment      string
	Works          []string
	MaterialsCost  float64
	MaterialsPaid  bool
	ProductsCost   float64
	ProductsPaid   bool
	WorkCost       float64
	WorkPaid       bool
	Debt           float64
	DebtPaid       bool
}

type CommentRow struct {
	OrderSerial      string
	Person           string
	Text             string
	MomentOfCreation string
}

type CabinetRow struct {
	Name         string
	Model        string
	VendorCode   string
	Description  string
	Material     string
	IP           string
	Manufacturer string
	Currency     string
	Price        float64
	Height       int
	Width        int
	Depth        int
	Relevance    bool
	PriceDate    string
}

type BoxRow struct {
	SerialNum       int
	Name            string
	OrderSerial     string
	SchemeDeveloper string
	Assembler       string
	Programmer      string
	Tester          string
}

type TaskRow struct {
	ID              int
	Name            string
	Description     string
	Executor        string
	OrderSerial     string
	PlannedDuration string // ISO 8601
	ActualDuration  string // ISO 8601
	CreationMoment  string
	StartMoment     string
	EndMoment       string
	Status          string
	PaymentStatus   string
	Cost            *float64
	ParentTaskID    *int
	RootTaskID      *int
}

type TimingRow struct {
	OrderSerial string
	TaskID      int
	Executor    string
	Time        string // ISO 8601
	Date        string
}

// nameList fetches a collection and returns the distinct non-empty values
// of its "name" field, preserving first-seen order.
func (c *Client) nameList(collection string) ([]string, error) {
	rows, err := c.FetchRows(collection)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		name := r.Str("name")
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// nameByID fetches a collection and maps row id to row name.
func (c *Client) nameByID(collection string) (map[int]string, error) {
	rows, err := c.FetchRows(collection)
	if err != nil {
		return nil, err
	}
	out := make(map[int]string, len(rows))
	for _, r := range rows {
		id, ok := r.Int("id")
		if !ok {
			continue
		}
		if name := r.Str("name"); name != "" {
			out[id] = name
		}
	}
	return out, nil
}

// personsByID maps person id to the full "Surname Name Patronymic" string
// every dependent collection references people by.
func (c *Client) personsByID() (map[int]string, error) {
	rows, err := c.FetchRows("Person")
	if err != nil {
		return nil, err
	}
	out := make(map[int]string, len(rows))
	for _, r := range rows {
		id, ok := r.Int("id")
		if !ok {
			continue
		}
		full := joinNameParts(r.Str("surname"), r.Str("name"), r.Str("patronymic"))
		if full != "" {
			out[id] = full
		}
	}
	return out, nil
}

func joinNameParts(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}

func (c *Client) Countries() ([]string, error)         { return c.nameList("Countries") }
func (c *Client) Cities() ([]string, error)            { return c.nameList("City") }
func (c *Client) Currencies() ([]string, error)        { return c.nameList("Money") }
func (c *Client) EquipmentTypes() ([]string, error)    { return c.nameList("EquipmentType") }
func (c *Client) CounterpartyForms() ([]string, error) { return c.nameList("CompaniesForm") }

func (c *Client) Manufacturers() ([]ManufacturerRow, error) {
	countries, err := c.nameByID("Countries")
	if err != nil {
		return nil, err
	}
	rows, err := c.FetchRows("Manufacturers")
	if err != nil {
		return nil, err
	}
	out := make([]ManufacturerRow, 0, len(rows))
	for _, r := range rows {
		name := r.Str("name")
		if name == "" {
			continue
		}
		countryID, _ := r.Int("country")
		out = append(out, ManufacturerRow{Name: name, Country: countries[countryID]})
	}
	return out, nil
}

func (c *Client) Counterparties() ([]CounterpartyRow, error) {
	forms, err := c.nameByID("CompaniesForm")
	if err != nil {
		return nil, err
	}
	cities, err := c.nameByID("City")
	if err != nil {
		return nil, err
	}
	rows, err := c.FetchRows("Company")
	if err != nil {
		return nil, err
	}
	out := make([]CounterpartyRow, 0, len(rows))
	for _, r := range rows {
		name := r.Str("name")
		if name == "" {
			continue
		}
		row := CounterpartyRow{Name: name, Note: r.Str("note")}
		if id, ok := r.Int("form"); ok {
			row.Form = forms[id]
		}
		if id, ok := r.Int("city"); ok {
			row.City = cities[id]
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *Client) People() ([]PersonRow, error) {
	companies, err := c.nameByID("Company")
	if err != nil {
		return nil, err
	}
	rows, err := c.FetchRows("Person")
	if err != nil {
		return nil, err
	}
	out := make([]PersonRow, 0, len(rows))
	for _, r := range rows {
		row := PersonRow{
			Surname:    r.Str("surname"),
			Name:       r.Str("name"),
			Patronymic: r.Str("patronymic"),
			Phone:      r.Str("phone"),
			Email:      r.Str("email"),
		}
		if row.Surname == "" && row.Name == "" {
			continue
		}
		if id, ok := r.Int("company"); ok {
			row.Company = companies[id]
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *Client) Works() ([]WorkRow, error) {
	rows, err := c.FetchRows("Work")
	if err != nil {
		return nil, err
	}
	out := make([]WorkRow, 0, len(rows))
	for _, r := range rows {
		name := r.Str("name")
		if name == "" {
			continue
		}
		out = append(out, WorkRow{Name: name, Description: r.Str("description")})
	}
	return out, nil
}

// orderStatusText maps the source system's numeric order status to its
// display text. Unknown codes deliberately fall through to a text that no
// target status carries, which the engine then defaults to "Не определён".
func orderStatusText(code int, ok bool) string {
	if !ok {
		return "Неизвестный статус"
	}
	switch code {
	case 0:
		return "Не определён"
	case 1:
		return "На согласовании"
	case 2:
		return "В работе"
	case 3:
		return "Просрочено"
	case 4:
		return "Выполнено в срок"
	case 5:
		return "Выполнено НЕ в срок"
	case 6:
		return "Не согласовано"
	case 7:
		return "На паузе"
	default:
		return "Неизвестный статус"
	}
}

func (c *Client) Orders() ([]OrderRow, error) {
	companies, err := c.nameByID("Company")
	if err != nil {
		return nil, err
	}
	works, err := c.nameByID("Work")
	if err != nil {
		return nil, err
	}
	rows, err := c.FetchRows("Order")
	if err != nil {
		return nil, err
	}
	out := make([]OrderRow, 0, len(rows))
	for _, r := range rows {
		serial := r.Str("serial")
		if serial == "" {
			c.log.WithField("row", r).Warn("skip order without serial")
			continue
		}
		row := OrderRow{
			Serial: serial,
			Name:   r.Str("name"),
			// The source field is spelled "dedline_moment"; that spelling
			// is part of the wire contract.
			StartMoment:    r.Str("start_moment"),
			DeadlineMoment: r.Str("dedline_moment"),
			EndMoment:      r.Str("end_moment"),
			MaterialsCost:  r.Float("materialsCost"),
			MaterialsPaid:  r.Bool("materialsPaid"),
			ProductsCost:   r.Float("productsCost"),
			ProductsPaid:   r.Bool("productsPaid"),
			WorkCost:       r.Float("workCost"),
			WorkPaid:       r.Bool("workPaid"),
			Debt:           r.Float("debt"),
			DebtPaid:       r.Bool("debtPaid"),
		}
		if id, ok := r.Int("customer"); ok {
			row.Customer = companies[id]
		}
		row.Priority, _ = r.Int("priority")
		row.Status = orderStatusText(r.Int("status"))
		if raw, ok := r["works"].([]interface{}); ok {
			for _, w := range raw {
				if id, ok := w.(float64); ok {
					if name, ok := works[int(id)]; ok {
						row.Works = append(row.Works, name)
					}
				}
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *Client) OrderComments() ([]CommentRow, error) {
	persons, err := c.personsByID()
	if err != nil {
		return nil, err
	}
	rows, err := c.FetchRows("OrderComent")
	if err != nil {
		return nil, err
	}
	out := make([]CommentRow, 0, len(rows))
	for _, r := range rows {
		text := r.Str("text")
		if text == "" {
			continue
		}
		row := CommentRow{
			Text:             text,
			OrderSerial:      r.Str("order"),
			MomentOfCreation: r.Str("moment_of_creation"),
		}
		if id, ok := r.Int("person"); ok {
			row.Person = persons[id]
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *Client) Cabinets() ([]CabinetRow, error) {
	materials, err := c.nameByID("BoxMaterial")
	if err != nil {
		return nil, err
	}
	ips, err := c.nameByID("BoxIp")
	if err != nil {
		return nil, err
	}
	manufacturers, err := c.nameByID("Manufacturers")
	if err != nil {
		return nil, err
	}
	currencies, err := c.nameByID("Money")
	if err != nil {
		return nil, err
	}
	equipRows, err := c.FetchRows("Equipment")
	if err != nil {
		return nil, err
	}
	equipment := make(map[int]Row, len(equipRows))
	for _, r := range equipRows {
		if id, ok := r.Int("id"); ok {
			equipment[id] = r
		}
	}
	rows, err := c.FetchRows("Box")
	if err != nil {
		return nil, err
	}
	out := make([]CabinetRow, 0, len(rows))
	for _, r := range rows {
		equipID, ok := r.Int("equipment")
		if !ok {
			continue
		}
		eq := equipment[equipID]
		row := CabinetRow{
			Name:  eq.Str("name"),
			Model: eq.Str("model"),
			// "vendore_code" is the source field's spelling.
			VendorCode:  eq.Str("vendore_code"),
			Description: eq.Str("description"),
			Price:       eq.Float("price"),
			Relevance:   true,
			PriceDate:   eq.Str("price_date"),
		}
		if v, ok := eq["relevance"].(bool); ok {
			row.Relevance = v
		}
		if id, ok := r.Int("material"); ok {
			row.Material = materials[id]
		}
		if id, ok := r.Int("ip"); ok {
			row.IP = ips[id]
		}
		if id, ok := eq.Int("manufacturer"); ok {
			row.Manufacturer = manufacturers[id]
		}
		if id, ok := eq.Int("currency"); ok {
			row.Currency = currencies[id]
		}
		row.Height, _ = r.Int("height")
		row.Width, _ = r.Int("width")
		row.Depth, _ = r.Int("depth")
		out = append(out, row)
	}
	return out, nil
}

func (c *Client) BoxAccounting() ([]BoxRow, error) {
	persons, err := c.personsByID()
	if err != nil {
		return nil, err
	}
	rows, err := c.FetchRows("Box_Accounting")
	if err != nil {
		return nil, err
	}
	out := make([]BoxRow, 0, len(rows))
	for _, r := range rows {
		serial, ok := r.Int("serial_num")
		if !ok || r.Str("name") == "" {
			continue
		}
		row := BoxRow{
			SerialNum:   serial,
			Name:        r.Str("name"),
			OrderSerial: r.Str("order"),
		}
		if id, ok := r.Int("scheme_developer"); ok {
			row.SchemeDeveloper = persons[id]
		}
		if id, ok := r.Int("assembler"); ok {
			row.Assembler = persons[id]
		}
		if id, ok := r.Int("programmer"); ok {
			row.Programmer = persons[id]
		}
		if id, ok := r.Int("tester"); ok {
			row.Tester = persons[id]
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *Client) Tasks() ([]TaskRow, error) {
	persons, err := c.personsByID()
	if err != nil {
		return nil, err
	}
	statuses, err := c.nameByID("TaskStatus")
	if err != nil {
		return nil, err
	}
	payments, err := c.nameByID("PaymentStatus")
	if err != nil {
		return nil, err
	}
	rows, err := c.FetchRows("Task")
	if err != nil {
		return nil, err
	}
	out := make([]TaskRow, 0, len(rows))
	for _, r := range rows {
		id, ok := r.Int("id")
		if !ok || r.Str("name") == "" {
			continue
		}
		row := TaskRow{
			ID:              id,
			Name:            r.Str("name"),
			Description:     r.Str("description"),
			OrderSerial:     r.Str("order"),
			PlannedDuration: ToISO8601(r.Str("planned_duration")),
			ActualDuration:  ToISO8601(r.Str("actual_duration")),
			CreationMoment:  r.Str("creation_moment"),
			StartMoment:     r.Str("start_moment"),
			EndMoment:       r.Str("end_moment"),
		}
		if pid, ok := r.Int("executor"); ok {
			row.Executor = persons[pid]
		}
		if sid, ok := r.Int("status"); ok {
			row.Status = statuses[sid]
		}
		if pid, ok := r.Int("payment_status_id"); ok {
			row.PaymentStatus = payments[pid]
		}
		if v, ok := r["cost"].(float64); ok {
			cost := v
			row.Cost = &cost
		}
		if v, ok := r.Int("parent_task"); ok {
			row.ParentTaskID = &v
		}
		if v, ok := r.Int("root_task"); ok {
			row.RootTaskID = &v
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *Client) Timings() ([]TimingRow, error) {
	persons, err := c.personsByID()
	if err != nil {
		return nil, err
	}
	rows, err := c.FetchRows("Timing")
	if err != nil {
		return nil, err
	}
	out := make([]TimingRow, 0, len(rows))
	for _, r := range rows {
		taskID, ok := r.Int("task")
		if !ok || r.Str("order") == "" {
			continue
		}
		row := TimingRow{
			OrderSerial: r.Str("order"),
			TaskID:      taskID,
			Time:        ToISO8601(r.Str("time")),
			Date:        r.Str("date"),
		}
		if row.Time == "" {
			row.Time = "PT0H0M0S"
		}
		if id, ok := r.Int("executor"); ok {
			row.Executor = persons[id]
		}
		out = append(out, row)
	}
	return out, nil
}
