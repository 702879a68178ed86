package model

import (
	"gorm.io/gorm"
)

type Country struct {
	gorm.Model
	Code string `gorm:"uniqueIndex"`
	Name string
}

type Region struct {
	gorm.Model
	Name      string
	CountryID uint `gorm:"index"`

	Country Country `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

type Winery struct {
	gorm.Model
	Name     string
	Website  *string
	RegionID uint `gorm:"index"`

	Region Region `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
