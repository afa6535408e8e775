package entities

// Service identifies the school information system an account belongs to.
type Service string

const (
	ServicePronote      Service = "pronote"
	ServiceEcoleDirecte Service = "ecoledirecte"
	ServiceSkolengo     Service = "skolengo"
	ServiceUPHF         Service = "uphf"
	ServiceARD          Service = "ard"
	ServiceTurboself    Service = "turboself"
	ServiceLocal        Service = "local"
)

var allServices = []Service{
	ServicePronote,
	ServiceEcoleDirecte,
	ServiceSkolengo,
	ServiceUPHF,
	ServiceARD,
	ServiceTurboself,
	ServiceLocal,
}

// AllServices returns every known service in declaration order.
func AllServices() []Service {
	out := make([]Service, len(allServices))
	copy(out, allServices)
	return out
}

// Valid reports whether s is one of the known services.
func (s Service) Valid() bool {
	for _, known := range allServices {
		if s == known {
			return true
		}
	}
	return false
}

// RequiresSession reports whether adapter calls need a live instance.
func (s Service) RequiresSession() bool {
	return s != ServiceLocal
}

// Domain is a category of school data cached per account.
type Domain string

const (
	DomainGrades     Domain = "grades"
	DomainHomework   Domain = "homework"
	DomainTimetable  Domain = "timetable"
	DomainAttendance Domain = "attendance"
	DomainNews       Domain = "news"
	DomainChats      Domain = "chats"
	DomainCanteen    Domain = "canteen"
)

var allDomains = []Domain{
	DomainGrades,
	DomainHomework,
	DomainTimetable,
	DomainAttendance,
	DomainNews,
	DomainChats,
	DomainCanteen,
}

// AllDomains returns every cached domain in declaration order.
func AllDomains() []Domain {
	out := make([]Domain, len(allDomains))
	copy(out, allDomains)
	return out
}

// ParseDomain converts a raw string to a Domain.
func ParseDomain(raw string) (Domain, bool) {
	for _, d := range allDomains {
		if string(d) == raw {
			return d, true
		}
	}
	return "", false
}
