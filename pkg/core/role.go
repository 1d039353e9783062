package core

// Role is the multistate role an action variant applies to.
type Role string

const (
	RoleMaster  Role = "Master"
	RoleSlave   Role = "Slave"
	RoleStarted Role = "Started"
	RoleStopped Role = "Stopped"
)
