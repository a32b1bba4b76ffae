package migrations

import "time"

// gorm models exist only to keep the schema behind the notification
// statements under migration control; runtime reads go through the pgx
// pool, never through these.

type userModel struct {
	ID        string `gorm:"column:_id;type:uuid;primaryKey"`
	FirstName string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName  string `gorm:"column:last_name;type:varchar(100);not null"`
	EmailID   string `gorm:"column:email_id;type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userModel) TableName() string { return "user_table" }

type accessRequestModel struct {
	ID                string     `gorm:"column:_id;type:uuid;primaryKey"`
	UserID            string     `gorm:"column:user_id;type:uuid;not null"`
	OwnerID           string     `gorm:"column:owner_id;type:uuid;not null"`
	ItemID            string     `gorm:"column:item_id;type:uuid;not null"`
	ItemType          string     `gorm:"column:item_type;type:varchar(50);not null"`
	Status            string     `gorm:"column:status;type:varchar(20);not null;default:PENDING"`
	Constraints       *string    `gorm:"column:constraints;type:jsonb"`
	ResourceServerURL string     `gorm:"column:resource_server_url;type:varchar(255);not null"`
	ExpiryAt          *time.Time `gorm:"column:expiry_at"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (accessRequestModel) TableName() string { return "request" }
