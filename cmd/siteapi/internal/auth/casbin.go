package auth

import (
	_ "embed"
	"fmt"
	"log"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
)

//go:embed model.conf
var casbinModelContent string

//go:embed policy.csv
var casbinPolicyContent string

// Permissions decides which mutations a profile role may perform.
// Passing the route guard only requires a profile; the role is checked per
// mutation.
type Permissions struct {
	enforcer casbin.IEnforcer
}

// NewPermissions creates an enforcer over the embedded model and role policies.
func NewPermissions() (*Permissions, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(casbinPolicyContent))
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load casbin policies: %w", err)
	}

	return &Permissions{enforcer: enforcer}, nil
}

// Allowed reports whether role may perform action on object.
// Enforcement errors deny.
func (p *Permissions) Allowed(role, object, action string) bool {
	ok, err := p.enforcer.Enforce(RoleSubject(role), object, action)
	if err != nil {
		log.Printf("permission check failed for role %s on %s/%s: %v", role, object, action, err)
		return false
	}
	return ok
}
