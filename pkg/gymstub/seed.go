package gymstub

import "github.com/naiba/gymkit/model"

const (
	DemoEmail    = "demo@gymkit.test"
	DemoPassword = "demo-password"
)

func (s *Server) seed() {
	s.AddGym(model.Gym{Name: "Acme Fitness", Slug: "acme", Address: "12 Harbour Rd", Phone: "+1 555 0100", Email: "hello@acme.test"})
	s.AddGym(model.Gym{Name: "Zen Yoga Studio", Slug: "zen", Address: "4 Lotus Lane", Phone: "+1 555 0199", Email: "namaste@zen.test"})

	s.AddMembership("acme", model.Membership{Name: "Monthly", Price: 39, Currency: "USD", DurationDays: 30,
		Features: []string{"Gym floor", "Locker"}})
	s.AddMembership("acme", model.Membership{Name: "Annual", Price: 399, Currency: "USD", DurationDays: 365,
		Features: []string{"Gym floor", "Locker", "Classes"}})
	s.AddClass("acme", model.GymClass{Name: "HIIT", Instructor: "Sam", Schedule: "Mon 18:00", Capacity: 20, DurationMinutes: 45})
	s.AddClass("acme", model.GymClass{Name: "Spin", Instructor: "Alex", Schedule: "Wed 07:00", Capacity: 15, DurationMinutes: 50})
	s.AddService("acme", model.GymService{Name: "Personal training", Price: 60, Currency: "USD"})
	s.SetContact("acme", model.ContactInfo{Address: "12 Harbour Rd", Phone: "+1 555 0100", Email: "hello@acme.test",
		OpeningHours: "Mon-Sun 06:00-22:00"})

	s.AddMembership("zen", model.Membership{Name: "Ten class pass", Price: 120, Currency: "USD", DurationDays: 90})
	s.AddClass("zen", model.GymClass{Name: "Vinyasa", Instructor: "Kai", Schedule: "Tue 19:00", Capacity: 12, DurationMinutes: 60})
	s.AddService("zen", model.GymService{Name: "Massage", Price: 80, Currency: "USD"})
	s.SetContact("zen", model.ContactInfo{Address: "4 Lotus Lane", Email: "namaste@zen.test", OpeningHours: "Tue-Sun 08:00-20:00"})

	if _, err := s.AddUser("Demo Member", DemoEmail, "+1 555 0123", DemoPassword); err != nil {
		s.log.WithError(err).Error("seed demo account failed")
	}
}
