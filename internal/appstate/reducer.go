package appstate

type ActionKind string

const (
	ActionHydrate     ActionKind = "hydrate"
	ActionSetRole     ActionKind = "set_role"
	ActionSetPro      ActionKind = "set_pro"
	ActionSetProfile  ActionKind = "set_profile"
	ActionSetEmail    ActionKind = "set_email"
	ActionSetLanguage ActionKind = "set_language"
	ActionToast       ActionKind = "toast"
)

// ProfileUpdate — частичное обновление профиля: nil-поля сохраняют прежнее
// значение.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName"`
	Email       *string `json:"email"`
	Mobile      *string `json:"mobile"`
}

// Action — действие редьюсера. Заполняется только поле, соответствующее Kind.
type Action struct {
	Kind     ActionKind
	Snapshot *persistedState // hydrate
	Role     Role
	IsPro    bool
	Profile  ProfileUpdate
	Email    string
	Language string
	Toast    *Toast
}

// reduce — чистый переход состояния; неизвестный Kind возвращает state как есть.
func reduce(state State, a Action) State {
	switch a.Kind {
	case ActionHydrate:
		if a.Snapshot != nil {
			state.Session = a.Snapshot.Session
		}
		state.Hydrated = true
		return state
	case ActionSetRole:
		state.Session.Role = a.Role
		state.Session.UserID = UserIDForRole(a.Role)
		return state
	case ActionSetPro:
		state.Session.IsPro = a.IsPro
		return state
	case ActionSetProfile:
		if a.Profile.DisplayName != nil {
			state.Session.DisplayName = *a.Profile.DisplayName
		}
		if a.Profile.Email != nil {
			state.Session.Email = *a.Profile.Email
		}
		if a.Profile.Mobile != nil {
			state.Session.Mobile = *a.Profile.Mobile
		}
		return state
	case ActionSetEmail:
		state.Session.Email = a.Email
		return state
	case ActionSetLanguage:
		state.Session.Language = a.Language
		return state
	case ActionToast:
		state.UI.LastToast = a.Toast
		return state
	default:
		return state
	}
}
