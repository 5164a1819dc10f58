package context

type Key string

const (
	Claims      Key = "claims"
	CurrentUser Key = "current_user"
	OrgContext  Key = "org_context"
	Params      Key = "params"
)
