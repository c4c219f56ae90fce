package model

// Gym 即租户，slug 决定作用域接口的 base URL
type Gym struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

// TenantSelection is the persisted gym choice of this device.
type TenantSelection struct {
	ID   uint64 `json:"id,omitempty"`
	Slug string `json:"slug"`
	Name string `json:"name,omitempty"`
}

func (g Gym) Selection() TenantSelection {
	return TenantSelection{ID: g.ID, Slug: g.Slug, Name: g.Name}
}
