package store

import "time"

// UserRecord is a row of app_user.
type UserRecord struct {
	UserID   int `gorm:"column:user_id;primaryKey"`
	Email    string
	FullName string
	IsAdmin  bool
}

func (UserRecord) TableName() string { return "app_user" }

// PeriodRecord is a row of period. Nil dates are open ends.
type PeriodRecord struct {
	PeriodID  int `gorm:"column:period_id;primaryKey"`
	StartDate *string
	EndDate   *string
}

func (PeriodRecord) TableName() string { return "period" }

// PeriodAccountRecord is one heading or account of a period's chart.
type PeriodAccountRecord struct {
	PeriodID     int `gorm:"column:period_id;primaryKey;autoIncrement:false"`
	AccountID    int `gorm:"column:account_id;primaryKey;autoIncrement:false"`
	NestingLevel int `gorm:"column:nesting_level;primaryKey;autoIncrement:false"`
	AccountType  string
	Title        string
}

func (PeriodAccountRecord) TableName() string { return "period_account" }

// BillRecord is a row of bill.
type BillRecord struct {
	BillID       int `gorm:"column:bill_id;primaryKey"`
	Description  string
	AmountCents  int64 // as submitted, before accounts are assigned
	PaidDate     *string
	PaidUserID   *int
	ClosedDate   *string
	ClosedType   *string
	ClosedUserID *int
	CreatedDate  string
}

func (BillRecord) TableName() string { return "bill" }

// BillEntryRecord is one ledger line of a bill.
type BillEntryRecord struct {
	BillID        int `gorm:"column:bill_id;primaryKey;autoIncrement:false"`
	RowNumber     int `gorm:"column:row_number;primaryKey;autoIncrement:false"`
	AccountID     int
	Debit         bool
	UnitCount     int64
	UnitCostCents int64
	Description   string
}

func (BillEntryRecord) TableName() string { return "bill_entry" }

// TagRecord is an administered, available tag.
type TagRecord struct {
	Tag string `gorm:"column:tag;primaryKey"`
}

func (TagRecord) TableName() string { return "tag" }

// BillTagRecord attaches a tag to a bill.
type BillTagRecord struct {
	BillID int    `gorm:"column:bill_id;primaryKey;autoIncrement:false"`
	Tag    string `gorm:"column:tag;primaryKey"`
}

func (BillTagRecord) TableName() string { return "bill_tag" }

// ImageRecord holds content-addressed image bytes.
type ImageRecord struct {
	ImageID   string `gorm:"column:image_id;primaryKey"`
	ImageData []byte
}

func (ImageRecord) TableName() string { return "image" }

// BillImageRecord orders the images of a bill, starting from 1.
type BillImageRecord struct {
	BillID       int `gorm:"column:bill_id;primaryKey;autoIncrement:false"`
	BillImageNum int `gorm:"column:bill_image_num;primaryKey;autoIncrement:false"`
	ImageID      string
}

func (BillImageRecord) TableName() string { return "bill_image" }

// HistoryRecord is an append-only audit row for a bill change.
type HistoryRecord struct {
	HistoryID int `gorm:"column:history_id;primaryKey"`
	BillID    int
	Timestamp time.Time
	Operation string
	UserID    *int
	Details   string
}

func (HistoryRecord) TableName() string { return "bill_history" }
