package router

// Entry is the login screen, where users land when they are not logged in.
const Entry = "/"

// DefaultRoutes is the application's route table. Everything under /index
// needs a login.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Name: "Login"},
		{Path: "/register", Name: "Register"},
		{
			Path: "/index",
			Name: "Index",
			Meta: Meta{RequiresAuth: true},
			Children: []Route{
				{Path: "", Name: "IndexMain"},
				{Path: "checkUserInfo/:username", Name: "checkUserDetail"},
				{Path: "checkUserInfo"},
				{Path: "addUser"},
				{Path: "modifyProfile"},
				{Path: "chat"},
				{Path: "writing"},
			},
		},
		{Path: "/test", Name: "Test"},
	}
}
