package enum

// ── Group A: State machine (order lifecycle, fixed order) ──

const (
	OrderStatusPlaced    = "Placed"
	OrderStatusPreparing = "Preparing"
	OrderStatusReady     = "Ready"
	OrderStatusCollected = "Collected"
)

// ── Group B: Deployment switches ──

const (
	OrderModeLocal  = "local"
	OrderModeRemote = "remote"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverFile     = "file"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
)

// ── Group C: Configurable labels (no validation) ──

const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeSnack     = "snack"
	MealTypeDrink     = "drink"
)

// ── Live-refresh event types ──

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
)
