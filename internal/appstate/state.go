// Package appstate — состояние сессии/UI приложения: чистый редьюсер поверх
// немутируемых снапшотов, гидратация из хранилища и персист только session.
package appstate

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// UserIDForRole — фиксированное отображение роли в userId:
// admin→admin, staff→staff, всё остальное→customer.
func UserIDForRole(role Role) string {
	switch role {
	case RoleAdmin:
		return "admin"
	case RoleStaff:
		return "staff"
	default:
		return "customer"
	}
}

type Session struct {
	Role        Role   `json:"role"`
	IsPro       bool   `json:"isPro"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	Language    string `json:"language"`
}

type Toast struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type UI struct {
	LastToast *Toast `json:"lastToast"`
}

// State — снапшот состояния. Передаётся по значению: каждый переход создаёт
// новый снапшот, прежние не мутируются.
type State struct {
	Hydrated bool    `json:"hydrated"`
	Session  Session `json:"session"`
	UI       UI      `json:"ui"`
}

func initialState() State {
	return State{
		Session: Session{
			Role:        RoleAdmin,
			IsPro:       false,
			UserID:      "admin",
			DisplayName: "Admin",
			Email:       "admin@example.com",
			Mobile:      "",
			Language:    "en",
		},
	}
}

// persistedState — то, что пишется в app_state: только session, без UI.
type persistedState struct {
	Session Session `json:"session"`
}
