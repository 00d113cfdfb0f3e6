package service

import (
	"survey_backend/internal/config"
	"survey_backend/internal/model"
	"survey_backend/internal/util"
	"survey_backend/pkg/logger"
	"sync"

	"go.uber.org/zap"
)

// Policy 服务端权限判定，配置变更时可热更新
type Policy struct {
	mu          sync.RWMutex
	roles       map[string]map[model.Permission]bool
	defaultRole string
}

func NewPolicy(cfg config.PolicyConfig) *Policy {
	p := &Policy{}
	p.Update(cfg)
	return p
}

func (p *Policy) Update(cfg config.PolicyConfig) {
	known := make(map[model.Permission]bool, len(model.AllPermissions))
	for _, perm := range model.AllPermissions {
		known[perm] = true
	}

	roles := make(map[string]map[model.Permission]bool, len(cfg.Roles))
	for role, perms := range cfg.Roles {
		set := make(map[model.Permission]bool, len(perms))
		for _, name := range perms {
			perm := model.Permission(name)
			if !known[perm] {
				logger.Log.Warn("ignoring unknown permission in policy",
					zap.String("role", role), zap.String("permission", name))
				continue
			}
			set[perm] = true
		}
		roles[role] = set
	}

	p.mu.Lock()
	p.roles = roles
	p.defaultRole = cfg.DefaultRole
	p.mu.Unlock()
}

func (p *Policy) Allowed(claims *util.Claims, perm model.Permission) bool {
	if claims == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	role := claims.Role
	if role == "" {
		role = p.defaultRole
	}
	return p.roles[role][perm]
}

func (p *Policy) Check(claims *util.Claims, perm model.Permission) error {
	if !p.Allowed(claims, perm) {
		return util.ErrPermissionDenied
	}
	return nil
}
