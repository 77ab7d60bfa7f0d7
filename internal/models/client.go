package models

import "time"

// Client is a person or company the practice bills. Projects and invoices
// belong to exactly one client.
type Client struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;index" json:"name"`

	ContactPerson string `gorm:"size:255" json:"contact_person,omitempty"`
	Email         string `gorm:"size:255" json:"email,omitempty"`
	Phone         string `gorm:"size:20" json:"phone,omitempty"`
	Address       string `gorm:"type:text" json:"address,omitempty"`
	INN           string `gorm:"size:12" json:"inn,omitempty"`

	// Bank details are optional: the client may be an individual.
	BankName             string `gorm:"size:255" json:"bank_name,omitempty"`
	BIK                  string `gorm:"size:9" json:"bik,omitempty"`
	CheckingAccount      string `gorm:"size:20" json:"checking_account,omitempty"`
	CorrespondentAccount string `gorm:"size:20" json:"correspondent_account,omitempty"`

	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Projects []Project `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	Invoices []Invoice `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
}
