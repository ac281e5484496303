package models

import (
	"time"
)

// Application type, lifecycle, tier and strategy values accepted by the catalogue.
var (
	ApplicationTypes  = []string{"COTS", "Custom", "SaaS"}
	LifecycleStatuses = []string{"Production", "Development", "Testing", "Deprecated", "Retired"}
	Tiers             = []string{"Tier 0", "Tier 1", "Tier 2", "Tier 3"}
	Strategies        = []string{"Maintain", "Enhance", "Modernize", "Transform", "Eliminate"}
)

const (
	StatusProduction  = "Production"
	StrategyEliminate = "Eliminate"
	TierCritical      = "Tier 0"
)

// ApplicationRecord is one row of the application catalogue
type ApplicationRecord struct {
	ID                    string `gorm:"primaryKey;size:32" json:"id" validate:"required,catalogueid"`
	ApplicationName       string `gorm:"size:100;not null;index" json:"applicationName" validate:"required,min=3,max=100,appname"`
	ApplicationCommonName string `gorm:"size:200;not null" json:"applicationCommonName" validate:"required,min=5,max=200"`
	Prefix                string `gorm:"size:10" json:"prefix" validate:"required,min=2,max=10,appprefix"`
	Description           string `gorm:"type:text" json:"description" validate:"max=1000"`

	OwnerDivision        string `gorm:"size:100" json:"ownerDivision" validate:"required"`
	OwnerDomain          string `gorm:"size:100" json:"ownerDomain" validate:"required"`
	ArchitectureDomainL1 string `gorm:"column:architecture_domain_l1;size:100" json:"architectureDomainL1" validate:"required"`
	ArchitectureDomainL2 string `gorm:"column:architecture_domain_l2;size:100" json:"architectureDomainL2" validate:"required"`
	ArchitectureDomainL3 string `gorm:"column:architecture_domain_l3;size:100" json:"architectureDomainL3" validate:"required"`

	VendorName      string `gorm:"size:100;index" json:"vendorName" validate:"required"`
	ProductName     string `gorm:"size:150" json:"productName" validate:"required,min=3,max=150"`
	Version         string `gorm:"size:50" json:"version" validate:"required,max=50,appversion"`
	ApplicationType string `gorm:"size:20" json:"applicationType" validate:"required,apptype"`

	LifecycleStatus string   `gorm:"size:20;index" json:"lifecycleStatus" validate:"required,lifecycle"`
	CurrentTier     string   `gorm:"size:10;index" json:"currentTier" validate:"required,tier"`
	TargetTier      string   `gorm:"size:10" json:"targetTier" validate:"required,tier"`
	Strategy        Strategy `gorm:"embedded;embeddedPrefix:strategy_" json:"strategy"`

	DeploymentLocations DeploymentLocations `gorm:"embedded;embeddedPrefix:deployed_" json:"deploymentLocations"`

	ExternallyManagedService bool    `json:"externallyManagedService"`
	IntegrationPointID       *string `gorm:"size:100" json:"integrationPointId" validate:"omitempty,integrationid"`
	ApplicationReplacementID *string `gorm:"size:100" json:"applicationReplacementId" validate:"omitempty,replacementid"`

	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedBy string    `gorm:"size:255" json:"created_by" validate:"required"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedBy string    `gorm:"size:255" json:"updated_by" validate:"required"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Strategy is the short, mid and long term modernization plan
type Strategy struct {
	ShortTerm string `gorm:"size:20" json:"shortTerm" validate:"required,strategy"`
	MidTerm   string `gorm:"size:20" json:"midTerm" validate:"required,strategy"`
	LongTerm  string `gorm:"size:20" json:"longTerm" validate:"required,strategy"`
}

// DeploymentLocations flags the regions and sites an application runs in
type DeploymentLocations struct {
	EnbdUAE       bool `json:"enbdUAE"`
	EI            bool `json:"ei"`
	EnbdKSA       bool `json:"enbdKSA"`
	EnbdEgypt     bool `json:"enbdEgypt"`
	EnbdIndia     bool `json:"enbdIndia"`
	EnbdLondon    bool `json:"enbdLondon"`
	EnbdSingapore bool `json:"enbdSingapore"`
}

// TableName overrides the table name for ApplicationRecord
func (ApplicationRecord) TableName() string {
	return "applications"
}
