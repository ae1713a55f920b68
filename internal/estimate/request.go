package estimate

// Request is an estimate as it is submitted and stored: line items, the
// labor duration and plan, and an optional margin override. Welders and
// Helpers are the legacy headcounts read only when LaborDetails is empty.
type Request struct {
	Items        []LineItem     `json:"items" yaml:"items"`
	Days         Number         `json:"days" yaml:"days"`
	Margin       MarginOverride `json:"profit_margin" yaml:"profit_margin"`
	LaborDetails []LaborRole    `json:"labor_details" yaml:"labor_details"`
	Welders      Number         `json:"welders" yaml:"welders"`
	Helpers      Number         `json:"helpers" yaml:"helpers"`
}

// Input validates the request's structure and pairs it with settings.
func (r Request) Input(settings Settings) (Input, error) {
	plan, err := NewLaborPlan(r.LaborDetails, r.Welders, r.Helpers)
	if err != nil {
		return Input{}, err
	}
	return Input{
		Items:    r.Items,
		Days:     r.Days,
		Margin:   r.Margin,
		Settings: settings,
		Labor:    plan,
	}, nil
}

// Compact returns the request as it should be persisted: zero-count labor
// roles are dropped. A request carrying a role list drops its legacy
// headcounts too, so an emptied list still prices as no labor on reload.
func (r Request) Compact() Request {
	out := r
	if len(r.LaborDetails) > 0 {
		out.Welders = Number{}
		out.Helpers = Number{}
	}
	out.LaborDetails = DynamicLabor{Roles: r.LaborDetails}.Persisted()
	return out
}

// ComputeRequest is Input followed by Compute.
func ComputeRequest(r Request, settings Settings) (Result, error) {
	in, err := r.Input(settings)
	if err != nil {
		return Result{}, err
	}
	return Compute(in)
}
