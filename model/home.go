package model

// Home 首页需要的全部数据
type Home struct {
	Gym         *TenantSelection `json:"gym,omitempty"`
	Memberships []Membership     `json:"memberships"`
	Classes     []GymClass       `json:"classes"`
	Services    []GymService     `json:"services"`
}
