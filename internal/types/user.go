package types

// CurrentUser is the acting user resolved by the auth layer in front of this
// service. Role names follow Canvas enrollment types.
type CurrentUser struct {
	UID                 string   `json:"uid"`
	CanvasSiteID        int      `json:"canvasSiteId"`
	CanvasSiteUserRoles []string `json:"canvasSiteUserRoles"`
	IsTeaching          bool     `json:"isTeaching"`
	MasqueradingUserID  string   `json:"masqueradingUserId"`
}

// HasAnyRole reports whether the user holds at least one of the given roles on
// the current course site.
func (u CurrentUser) HasAnyRole(roles ...string) bool {
	for _, held := range u.CanvasSiteUserRoles {
		for _, role := range roles {
			if held == role {
				return true
			}
		}
	}
	return false
}
