package models

import "sort"

// DistributorSettings holds the per distributor "configured" flag. Absent entries read as configured.
type DistributorSettings map[Distributor]bool

// Configured reports the flag for d with the default-true-if-absent rule.
func (s DistributorSettings) Configured(d Distributor) bool {
	v, ok := s[d]
	if !ok {
		return true
	}
	return v
}

// Merge returns a copy of s with patch applied on top.
func (s DistributorSettings) Merge(patch DistributorSettings) DistributorSettings {
	out := s.Clone()
	for d, v := range patch {
		out[d] = v
	}
	return out
}

// Clone copies the map. A nil receiver yields an empty map.
func (s DistributorSettings) Clone() DistributorSettings {
	out := make(DistributorSettings, len(s))
	for d, v := range s {
		out[d] = v
	}
	return out
}

// Resolved expands every supported distributor using the default rule.
func (s DistributorSettings) Resolved() map[Distributor]bool {
	out := make(map[Distributor]bool, len(Distributors))
	for _, d := range Distributors {
		out[d] = s.Configured(d)
	}
	return out
}

// ConfiguredDistributors lists configured distributors in display order.
func (s DistributorSettings) ConfiguredDistributors() []Distributor {
	out := make([]Distributor, 0, len(Distributors))
	for _, d := range Distributors {
		if s.Configured(d) {
			out = append(out, d)
		}
	}
	return out
}

// AddProductAction is the outcome of the "Add Disti Product" affordance.
type AddProductAction string

const (
	AddProductActionRedirect AddProductAction = "redirect"
	AddProductActionSingle   AddProductAction = "single"
	AddProductActionChoose   AddProductAction = "choose"
)

// AddProductTarget tells the catalog page where "Add Disti Product" should lead.
type AddProductTarget struct {
	Action        AddProductAction `json:"action"`
	Distributors  []Distributor    `json:"distributors"`
	RedirectTo    string           `json:"redirectTo,omitempty"`
	RedirectAfter string           `json:"redirectAfter,omitempty"`
	Message       string           `json:"message,omitempty"`
}

// CredentialField describes one input on a distributor credential form.
type CredentialField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Secret   bool   `json:"secret"`
	Required bool   `json:"required"`
}

var credentialForms = map[Distributor][]CredentialField{
	DistributorIngram: {
		{Name: "clientId", Label: "Client ID", Required: true},
		{Name: "clientSecret", Label: "Client Secret", Secret: true, Required: true},
		{Name: "customerNumber", Label: "Customer Number", Required: true},
		{Name: "countryCode", Label: "Country Code", Required: true},
		{Name: "senderId", Label: "Sender ID"},
	},
	DistributorTDSynnex: {
		{Name: "apiKey", Label: "API Key", Secret: true, Required: true},
		{Name: "accountNumber", Label: "Account Number", Required: true},
		{Name: "region", Label: "Region", Required: true},
	},
	DistributorMicrosoft: {
		{Name: "tenantId", Label: "Tenant ID", Required: true},
		{Name: "applicationId", Label: "Application ID", Required: true},
		{Name: "clientSecret", Label: "Client Secret", Secret: true, Required: true},
		{Name: "partnerId", Label: "Partner ID"},
	},
	DistributorArrow: {
		{Name: "apiKey", Label: "API Key", Secret: true, Required: true},
		{Name: "resellerId", Label: "Reseller ID", Required: true},
		{Name: "environment", Label: "Environment"},
	},
}

// CredentialForm returns the form definition for d.
func CredentialForm(d Distributor) []CredentialField {
	return append([]CredentialField{}, credentialForms[d]...)
}

// RequiredCredentialFields lists required field names for d sorted by name.
func RequiredCredentialFields(d Distributor) []string {
	out := make([]string, 0, len(credentialForms[d]))
	for _, f := range credentialForms[d] {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	sort.Strings(out)
	return out
}
