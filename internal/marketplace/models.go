package marketplace

// Backend role casing. The browser uses the lower-case form.
const (
	RoleAdmin  = "ADMIN"
	RoleVendor = "VENDOR"
	RoleCenter = "CENTER"
)

// RegisterPayload is the body of POST /api/auth/register.
type RegisterPayload struct {
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	Password           string             `json:"password"`
	Phone              string             `json:"phone"`
	Role               string             `json:"role"`
	CenterName         string             `json:"centerName"`
	Address            Address            `json:"address"`
	Region             string             `json:"region"`
	OperationalDetails OperationalDetails `json:"operationalDetails"`
	Services           []string           `json:"services"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type OperationalDetails struct {
	Capacity     int          `json:"capacity"`
	WorkingHours WorkingHours `json:"workingHours"`
	WorkingDays  []string     `json:"workingDays"`
}

type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Envelope is the backend's standard response wrapper.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError is one structured per-field rejection.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LoginPayload is the body of POST /api/auth/login.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginEnvelope is the login response wrapper.
type LoginEnvelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    *LoginData `json:"data,omitempty"`
}

type LoginData struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// User is the authenticated account as returned by the backend.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Role   string `json:"role"`
	Status string `json:"status,omitempty"`
}
