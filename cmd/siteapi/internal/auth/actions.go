package auth

// Actions checked against the role policies.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// SectionObject names a content section in permission checks.
func SectionObject(key string) string {
	return "section/" + key
}

// RecordsObject names a domain table in permission checks.
func RecordsObject(kind string) string {
	return "records/" + kind
}

// AssetsObject names the uploaded asset bucket in permission checks.
const AssetsObject = "assets"

// RoleSubject converts a profile role to the policy subject.
func RoleSubject(role string) string {
	return "role:" + role
}
