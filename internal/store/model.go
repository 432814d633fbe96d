package store

import "time"

// Role ids are fixed by the on-disk schema.
const (
	RoleAdmin int64 = 1
	RoleUser  int64 = 2
)

// Order status values. Transitions are open -> locked (week or month
// lock) and locked -> open (password-gated week unlock only).
const (
	StatusOpen   = "open"
	StatusLocked = "locked"
)

// Role is a user role row.
type Role struct {
	ID   int64  `json:"id" gorm:"column:id;primaryKey"`
	Name string `json:"name" gorm:"column:name;not null;unique"`
}

func (Role) TableName() string { return "roles" }

// User is an orderer. Users are never physically deleted, only
// deactivated; email stays unique across active and inactive rows.
type User struct {
	ID           int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name         string `json:"name" gorm:"column:name;not null"`
	Email        string `json:"email" gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	RoleID       int64  `json:"role_id" gorm:"column:role_id;not null;default:2"`
	IsActive     bool   `json:"is_active" gorm:"column:is_active;not null"`
	DisplayOrder *int   `json:"display_order,omitempty" gorm:"column:display_order"`

	// RoleName is filled from the roles table on reads that join it.
	RoleName string `json:"role_name,omitempty" gorm:"-"`
}

func (User) TableName() string { return "users" }

// Item is a boxed-meal product with a price in integer currency units.
type Item struct {
	ID           int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name         string `json:"name" gorm:"column:name;not null"`
	Price        int64  `json:"price" gorm:"column:price;not null;default:0"`
	IsActive     bool   `json:"is_active" gorm:"column:is_active;not null"`
	DisplayOrder *int   `json:"display_order,omitempty" gorm:"column:display_order"`

	Options []ItemOption `json:"options,omitempty" gorm:"foreignKey:ItemID"`
}

func (Item) TableName() string { return "items" }

// ItemOption is a variant of an item with a price adjustment.
type ItemOption struct {
	ID              int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ItemID          int64  `json:"item_id" gorm:"column:item_id;not null;index"`
	Name            string `json:"name" gorm:"column:name;not null"`
	PriceAdjustment int64  `json:"price_adjustment" gorm:"column:price_adjustment;not null;default:0"`
}

func (ItemOption) TableName() string { return "item_options" }

// Order is one user's order for one calendar date. The date decides
// which reporting week and month the order belongs to.
type Order struct {
	ID             int64      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	OrderDate      string     `json:"order_date" gorm:"column:order_date;not null;index"`
	UserID         int64      `json:"user_id" gorm:"column:user_id;not null;index"`
	Status         string     `json:"status" gorm:"column:status;not null;default:open;index"`
	LockedAt       *time.Time `json:"locked_at,omitempty" gorm:"column:locked_at"`
	LockedByUserID *int64     `json:"locked_by_user_id,omitempty" gorm:"column:locked_by_user_id"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Order) TableName() string { return "orders" }

// OrderDetail is one line of an order. It never outlives its order.
type OrderDetail struct {
	ID       int64   `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	OrderID  int64   `json:"order_id" gorm:"column:order_id;not null;index"`
	ItemID   int64   `json:"item_id" gorm:"column:item_id;not null;index"`
	Quantity int     `json:"quantity" gorm:"column:quantity;not null;default:1"`
	Remarks  *string `json:"remarks,omitempty" gorm:"column:remarks"`
}

func (OrderDetail) TableName() string { return "order_details" }

// OrderDetailOption links an order line to a chosen item option.
type OrderDetailOption struct {
	OrderDetailID int64 `json:"order_detail_id" gorm:"column:order_detail_id;primaryKey"`
	OptionID      int64 `json:"option_id" gorm:"column:option_id;primaryKey"`
}

func (OrderDetailOption) TableName() string { return "order_detail_options" }

// AuditLog is an append-only action record. Rows are never updated or
// deleted.
type AuditLog struct {
	ID           int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID       *int64    `json:"user_id,omitempty" gorm:"column:user_id;index"`
	Action       string    `json:"action" gorm:"column:action;not null;index"`
	TargetEntity string    `json:"target_entity" gorm:"column:target_entity"`
	TargetID     *int64    `json:"target_id,omitempty" gorm:"column:target_id"`
	Details      string    `json:"details,omitempty" gorm:"column:details"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime;index"`

	// ActorName is filled from the users table when querying the log.
	ActorName *string `json:"actor_name,omitempty" gorm:"->;-:migration"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// Setting is one key/value row of facility metadata.
type Setting struct {
	Key   string `json:"key" gorm:"column:key;primaryKey"`
	Value string `json:"value" gorm:"column:value"`
}

func (Setting) TableName() string { return "settings" }

// Staff is the legacy roster table kept for data files predating the
// users table; its rows are copied into users on startup.
//
// The active flags here and on User/Item deliberately carry no default
// tag: gorm drops a zero-value field that has one on create, which
// would store an inactive row as active.
type Staff struct {
	ID           int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name         string `json:"name" gorm:"column:name;not null"`
	IsActive     bool   `json:"is_active" gorm:"column:is_active;not null"`
	DisplayOrder *int   `json:"display_order,omitempty" gorm:"column:display_order"`
}

func (Staff) TableName() string { return "staff" }

// NewOrder is the input for creating a single order with its lines.
type NewOrder struct {
	OrderDate string      `json:"order_date"`
	UserID    int64       `json:"user_id"`
	Lines     []OrderLine `json:"lines"`
}

// OrderLine is one requested line of a new order.
type OrderLine struct {
	ItemID    int64   `json:"item_id"`
	Quantity  int     `json:"quantity"`
	Remarks   string  `json:"remarks,omitempty"`
	OptionIDs []int64 `json:"option_ids,omitempty"`
}

// OrderView is the denormalized row the presentation layer renders:
// one row per (order, line) with names and prices joined in.
type OrderView struct {
	ID         int64    `json:"id"`
	OrderDate  string   `json:"order_date"`
	UserName   string   `json:"user_name"`
	ItemName   string   `json:"item_name"`
	Quantity   int      `json:"quantity"`
	Price      int64    `json:"price"`
	TotalPrice int64    `json:"total_price"`
	Remarks    string   `json:"remarks,omitempty"`
	Options    []string `json:"options"`
	Status     string   `json:"status"`
}

// WeeklyOrderLine is one cell of the weekly order grid.
type WeeklyOrderLine struct {
	StaffID   int64  `json:"staff_id"`
	OrderDate string `json:"order_date"`
	ItemID    int64  `json:"item_id"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status,omitempty"`
}

// WeeklySavePayload is the complete desired state of a week's orders
// as the UI last showed it.
type WeeklySavePayload struct {
	Orders           []WeeklyOrderLine `json:"orders"`
	StaffIDsOnScreen []int64           `json:"staff_ids_on_screen"`
	WeekStart        string            `json:"week_start"`
	WeekEnd          string            `json:"week_end"`
}

// ItemTotal is an aggregated quantity for one item.
type ItemTotal struct {
	ItemName      string `json:"item_name"`
	TotalQuantity int    `json:"total_quantity"`
}

// DaySummary lists per-item quantities for one calendar date.
type DaySummary struct {
	Date  string      `json:"date"`
	Items []ItemTotal `json:"items"`
}

// WeeklyReport holds four views over the same weekly aggregate.
type WeeklyReport struct {
	WeekStart    string                    `json:"week_start"`
	WeekEnd      string                    `json:"week_end"`
	Items        map[string]map[string]int `json:"items"`  // item name -> weekday -> quantity
	Totals       map[string]int            `json:"totals"` // weekday -> quantity
	TotalSummary []ItemTotal               `json:"total_summary"`
	Days         []DaySummary              `json:"days"`
}

// StaffTotal is one user's monthly spend.
type StaffTotal struct {
	StaffName   string `json:"staff_name"`
	TotalAmount int64  `json:"total_amount"`
}

// MonthlyReport is the payroll-deduction summary for one month.
type MonthlyReport struct {
	Month       string       `json:"month"`
	StaffTotals []StaffTotal `json:"staff_totals"`
	GrandTotal  int64        `json:"grand_total"`
	IsLocked    bool         `json:"is_locked"`
	LockedAt    *time.Time   `json:"locked_at,omitempty"`
	LockedBy    *string      `json:"locked_by,omitempty"`
}

// AuditFilter narrows an audit log query. Zero values mean "no filter".
type AuditFilter struct {
	ActorID      *int64     `json:"actor_id,omitempty"`
	Action       string     `json:"action,omitempty"`
	TargetEntity string     `json:"target_entity,omitempty"`
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
	Limit        int        `json:"limit,omitempty"`
	Offset       int        `json:"offset,omitempty"`
}

// AuditPage is one page of audit rows plus the unpaged total.
type AuditPage struct {
	Logs  []AuditLog `json:"logs"`
	Total int64      `json:"total"`
}

// Settings is the flat key/value facility metadata map.
type Settings map[string]string
