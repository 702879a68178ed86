package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type WineType struct {
	gorm.Model
	Name string `gorm:"uniqueIndex"`
}

type WineAcidity struct {
	gorm.Model
	Name string `gorm:"uniqueIndex"`
}

type Grape struct {
	gorm.Model
	Name string `gorm:"uniqueIndex"`
}

type Dish struct {
	gorm.Model
	Name string `gorm:"uniqueIndex"`
}

// Wine references grapes and dishes by id membership in GrapeIDs and PairWithIDs, not through
// join tables. Grapes and PairedDishes are filled per request and never persisted.
type Wine struct {
	gorm.Model
	Name        string `gorm:"index"`
	TypeID      uint   `gorm:"index"`
	Description string
	GrapeIDs    pq.Int64Array  `gorm:"type:integer[]"`
	PairWithIDs pq.Int64Array  `gorm:"type:integer[]"`
	ABV         float64        `gorm:"type:numeric(4,1)"`
	AcidityID   uint           `gorm:"index"`
	CountryID   uint           `gorm:"index"`
	WineryID    *uint          `gorm:"index"`
	Vintages    pq.StringArray `gorm:"type:text[]"`

	Type    WineType    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Acidity WineAcidity `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Country Country     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Winery  *Winery     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Ratings []Rating

	Grapes       []Grape `gorm:"-"`
	PairedDishes []Dish  `gorm:"-"`
}

type Rating struct {
	gorm.Model
	WineID      uint    `gorm:"index"`
	UserID      uint    `gorm:"index"`
	Value       float64 `gorm:"type:numeric(3,1)"`
	Description string
	Date        time.Time
}
