package models

// CIType enumerates configuration-item categories tracked in the topology.
type CIType string

const (
	CITypeServer          CIType = "Server"
	CITypeDatabase        CIType = "Database"
	CITypeApplication     CIType = "Application"
	CITypeAPIService      CIType = "APIService"
	CITypeBusinessService CIType = "BusinessService"
	CITypeNetworkSwitch   CIType = "NetworkSwitch"
	CITypeDataCenter      CIType = "DataCenter"
	CITypeRegion          CIType = "Region"
)

// CIStatus captures the operational state of a configuration item.
type CIStatus string

const (
	CIStatusOperational CIStatus = "OPERATIONAL"
	CIStatusMaintenance CIStatus = "MAINTENANCE"
	CIStatusDegraded    CIStatus = "DEGRADED"
	CIStatusDown        CIStatus = "DOWN"
)

// Criticality ranks how important a configuration item is to the business.
type Criticality string

const (
	CriticalityCritical Criticality = "CRITICAL"
	CriticalityHigh     Criticality = "HIGH"
	CriticalityMedium   Criticality = "MEDIUM"
	CriticalityLow      Criticality = "LOW"
)

// ConfigurationItem is a node in the infrastructure dependency graph.
type ConfigurationItem struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Type        CIType      `json:"type" yaml:"type"`
	Status      CIStatus    `json:"status" yaml:"status"`
	Criticality Criticality `json:"criticality,omitempty" yaml:"criticality,omitempty"`
}

// RelationshipKind enumerates typed directed edges between configuration items.
type RelationshipKind string

const (
	RelRunsOn     RelationshipKind = "RUNS_ON"
	RelDependsOn  RelationshipKind = "DEPENDS_ON"
	RelHostedOn   RelationshipKind = "HOSTED_ON"
	RelSupports   RelationshipKind = "SUPPORTS"
	RelEnables    RelationshipKind = "ENABLES"
	RelConnectsTo RelationshipKind = "CONNECTS_TO"
)

// Relationship is a directed edge in the dependency graph. Relationships carry
// no identity beyond the triple; duplicates and cycles are allowed.
type Relationship struct {
	FromID string           `json:"from" yaml:"from"`
	ToID   string           `json:"to" yaml:"to"`
	Type   RelationshipKind `json:"type" yaml:"type"`
}
