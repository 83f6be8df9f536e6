package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/pm"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/setting"
)

// flagNames maps the names accepted in the flags query parameter.
var flagNames = map[string]pm.QueryFlags{
	"activities":              pm.GetActivities,
	"receivers":               pm.GetReceivers,
	"services":                pm.GetServices,
	"providers":               pm.GetProviders,
	"instrumentation":         pm.GetInstrumentation,
	"intent_filters":          pm.GetIntentFilters,
	"signatures":              pm.GetSignatures,
	"meta_data":               pm.GetMetaData,
	"gids":                    pm.GetGIDs,
	"disabled_components":     pm.GetDisabledComponents,
	"shared_library_files":    pm.GetSharedLibraryFiles,
	"uri_permission_patterns": pm.GetURIPermissionPatterns,
	"permissions":             pm.GetPermissions,
	"uninstalled_packages":    pm.GetUninstalledPackages,
	"configurations":          pm.GetConfigurations,
}

// ParseFlags parses a numeric flag word (decimal or 0x hex) or a comma
// separated list of flag names.
func ParseFlags(s string) (pm.QueryFlags, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return pm.QueryFlags(v), nil
	}

	var flags pm.QueryFlags
	for _, name := range strings.Split(s, ",") {
		f, ok := flagNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("unknown flag %q", name)
		}
		flags |= f
	}
	return flags, nil
}

// query holds the caller identity and flags of a view request.
type query struct {
	flags pm.QueryFlags
	user  int
	pid   int
}

func intParam(c *gin.Context, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func (h *Handlers) parseQuery(c *gin.Context) (query, error) {
	var q query
	var err error
	if q.flags, err = ParseFlags(c.Query("flags")); err != nil {
		return q, err
	}
	if q.user, err = intParam(c, "user", h.defaultUser); err != nil {
		return q, err
	}
	if !setting.ValidUserID(q.user) {
		return q, fmt.Errorf("invalid user: %d", q.user)
	}
	if q.pid, err = intParam(c, "pid", 0); err != nil {
		return q, err
	}
	return q, nil
}

// parseUsers parses a comma separated list of user ids.
func parseUsers(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var users []int
	for _, part := range strings.Split(s, ",") {
		u, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || !setting.ValidUserID(u) {
			return nil, fmt.Errorf("invalid user %q", part)
		}
		users = append(users, u)
	}
	return users, nil
}
