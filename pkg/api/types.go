package api

// Region is a location where Nimbus Cloud services run.
type Region string

const (
	RegionEU1 Region = "eu-1"
	RegionEU2 Region = "eu-2"
	RegionUS1 Region = "us-1"
	RegionAP1 Region = "ap-1"
)

// Regions lists all known regions.
var Regions = []Region{RegionEU1, RegionEU2, RegionUS1, RegionAP1}

// ServerAction is an action applicable to a cloud server.
type ServerAction string

const (
	ServerActionStart         ServerAction = "start"
	ServerActionShutdown      ServerAction = "shutdown"
	ServerActionHardShutdown  ServerAction = "hard_shutdown"
	ServerActionReboot        ServerAction = "reboot"
	ServerActionHardReboot    ServerAction = "hard_reboot"
	ServerActionClone         ServerAction = "clone"
	ServerActionResetPassword ServerAction = "reset_password"
)

// BootMode selects how a server boots: from its system disk, in single
// user mode, or from a recovery live image.
type BootMode string

const (
	BootModeDefault  BootMode = "default"
	BootModeSingle   BootMode = "single"
	BootModeRecovery BootMode = "recovery"
)

// NATMode is the NAT option for servers attached to a private network.
type NATMode string

const (
	NATModeDNATAndSNAT NATMode = "dnat_and_snat"
	NATModeSNAT        NATMode = "snat"
	NATModeNoNAT       NATMode = "no_nat"
)

// BackupAction is an action applicable to a disk backup.
type BackupAction string

const (
	BackupActionRestore BackupAction = "restore"
	BackupActionMount   BackupAction = "mount"
	BackupActionUnmount BackupAction = "unmount"
)

// ResourceType identifies resource kinds in project and firewall
// operations.
type ResourceType string

const (
	ResourceServer   ResourceType = "server"
	ResourceBalancer ResourceType = "balancer"
	ResourceDatabase ResourceType = "database"
	ResourceCluster  ResourceType = "kubernetes"
	ResourceBucket   ResourceType = "storage"
)

// Terminal status values per resource type. A --status check compares
// against these, and --wait polls until they are reached.
const (
	ServerStatusOn       = "on"
	ServerStatusOff      = "off"
	DatabaseStatusActive = "started"
	BalancerStatusActive = "started"
	ClusterStatusActive  = "active"
	ImageStatusCreated   = "created"
	BackupStatusCreated  = "created"
)
