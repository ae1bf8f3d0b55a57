package listing

// categories are the product categories the marketplace accepts, per
// https://docs.aws.amazon.com/marketplace/latest/buyerguide/buyer-product-categories.html
var categories = map[string]struct{}{
	"AI/ML Models":                       {},
	"Application Development":            {},
	"Application Servers":                {},
	"Application Stacks":                 {},
	"Backup & Recovery":                  {},
	"Big Data":                           {},
	"Blockchain":                         {},
	"Business Intelligence":              {},
	"Collaboration & Productivity":       {},
	"Compliance":                         {},
	"Containers":                         {},
	"Content Management":                 {},
	"CRM":                                {},
	"Data Analytics":                     {},
	"Databases & Caching":                {},
	"DevOps":                             {},
	"eCommerce":                          {},
	"Email & Messaging":                  {},
	"Financial Services":                 {},
	"Healthcare Services":                {},
	"High Performance Computing":         {},
	"Identity & Access Management":       {},
	"IoT":                                {},
	"IT Business Management":             {},
	"Log Analysis":                       {},
	"Machine Learning":                   {},
	"Media Services":                     {},
	"Migration":                          {},
	"Monitoring":                         {},
	"Network Infrastructure":             {},
	"Operating Systems":                  {},
	"Project Management":                 {},
	"Public Sector Data":                 {},
	"Security":                           {},
	"Source Control":                     {},
	"Storage & Backup":                   {},
	"Testing":                            {},
	"Web Servers":                        {},
	"Workflow Automation":                {},
	"Infrastructure as Code":             {},
	"Data Governance and Cataloging":     {},
	"ERP":                                {},
	"Observability and Monitoring":       {},
	"Procurement and Strategic Sourcing": {},
}

// ValidCategory reports whether the marketplace accepts the category name.
func ValidCategory(name string) bool {
	_, ok := categories[name]
	return ok
}
