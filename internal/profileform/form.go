package profileform

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"jobsy/internal/backend"
	"jobsy/internal/guard"
	"jobsy/internal/i18n"
)

// Mode elige entre alta y edicion del perfil.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeCreate, ModeEdit:
		return Mode(s), true
	default:
		return "", false
	}
}

const (
	MsgLoadFailed        = "Failed to load profile data."
	MsgLoadForEditFailed = "Failed to load profile data for editing."
	MsgAlreadyComplete   = "Profile already complete. Redirecting..."
	MsgNotFound          = "Profile not found."
	MsgNotAuthenticated  = "User not authenticated."
	MsgRequired          = "Please fill out all required profile fields."
	MsgWorkRequired      = "Please fill out all required job seeker profile fields."
	MsgRoleMissing       = "User type is missing. Please select your user type."
	MsgCreated           = "Profile created successfully!"
	MsgUpdated           = "Profile updated successfully!"
	MsgCreateFailed      = "An unexpected error occurred. Please try again."
	MsgUpdateFailed      = "An unexpected error occurred during profile update. Please try again."
)

// Saver es la operacion de guardado que recibe el formulario.
type Saver interface {
	Save(ctx context.Context, userID string, values Values) error
}

type SaverFunc func(ctx context.Context, userID string, values Values) error

func (f SaverFunc) Save(ctx context.Context, userID string, values Values) error {
	return f(ctx, userID, values)
}

// CreateSaver inserta un perfil nuevo.
func CreateSaver(profiles backend.Profiles) Saver {
	return SaverFunc(func(ctx context.Context, userID string, values Values) error {
		return profiles.CreateProfile(ctx, values.Profile(userID))
	})
}

// UpdateSaver actualiza los campos editables del perfil existente.
func UpdateSaver(profiles backend.Profiles) Saver {
	return SaverFunc(func(ctx context.Context, userID string, values Values) error {
		return profiles.UpdateProfile(ctx, userID, values.Patch())
	})
}

// Result es lo que la pagina muestra tras cargar o enviar.
type Result struct {
	Mode        Mode              `json:"mode"`
	Values      Values            `json:"values"`
	Message     i18n.Message      `json:"message"`
	Destination guard.Destination `json:"destination,omitempty"`
	Saved       bool              `json:"saved"`
}

// Form es el formulario de perfil compartido por alta y edicion.
type Form struct {
	logger *zap.Logger
	mode   Mode
	client backend.Client
	saver  Saver
}

// New arma el formulario; saver nil usa el guardado por defecto del modo.
func New(logger *zap.Logger, mode Mode, client backend.Client, saver Saver) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	if saver == nil {
		if mode == ModeEdit {
			saver = UpdateSaver(client)
		} else {
			saver = CreateSaver(client)
		}
	}
	return &Form{logger: logger, mode: mode, client: client, saver: saver}
}

func (f *Form) Mode() Mode {
	return f.mode
}

// Load prepara el formulario para el usuario actual.
func (f *Form) Load(ctx context.Context) Result {
	res := Result{Mode: f.mode}

	user, dest, err := guard.New(f.logger, f.client).Identify(ctx, f.client)
	if err != nil {
		res.Message = i18n.Error(f.loadFailedKey())
		return res
	}
	if dest == guard.Login {
		res.Destination = guard.Login
		return res
	}

	profile, err := f.client.FindProfile(ctx, user.UserID)
	switch {
	case err == nil:
		if f.mode == ModeCreate {
			res.Message = i18n.Success(MsgAlreadyComplete)
			res.Destination = guard.Dashboard
			return res
		}
		res.Values = ValuesFromProfile(profile)
	case errors.Is(err, backend.ErrNotFound):
		if f.mode == ModeEdit {
			res.Message = i18n.Error(MsgNotFound)
			res.Destination = guard.CompleteProfile
			return res
		}
		res.Values = Values{UserType: user.Role}
	default:
		f.logger.Warn("profile form: profile lookup failed", zap.Error(err), zap.String("user_id", user.UserID))
		res.Message = i18n.Error(f.loadFailedKey())
	}
	return res
}

// Submit valida y guarda. En edicion el rol siempre es el del perfil guardado.
func (f *Form) Submit(ctx context.Context, input Values) Result {
	values := input.trimmed()
	res := Result{Mode: f.mode, Values: values}

	user, dest, err := guard.New(f.logger, f.client).Identify(ctx, f.client)
	if err != nil || dest == guard.Login {
		res.Message = i18n.Error(MsgNotAuthenticated)
		return res
	}

	switch f.mode {
	case ModeCreate:
		values.UserType = user.Role
	case ModeEdit:
		existing, err := f.client.FindProfile(ctx, user.UserID)
		if err != nil {
			if errors.Is(err, backend.ErrNotFound) {
				res.Message = i18n.Error(MsgNotFound)
				res.Destination = guard.CompleteProfile
				return res
			}
			f.logger.Warn("profile form: profile lookup failed", zap.Error(err), zap.String("user_id", user.UserID))
			res.Message = i18n.Error(MsgLoadForEditFailed)
			return res
		}
		values.UserType = existing.UserType
	}
	res.Values = values

	if err := Validate(values); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			res.Message = i18n.Error(ve.Key)
			return res
		}
		f.logger.Error("profile form: validator failed", zap.Error(err))
		res.Message = i18n.Error(f.saveFailedKey())
		return res
	}

	if err := f.saver.Save(ctx, user.UserID, values); err != nil {
		f.logger.Warn("profile form: save failed", zap.Error(err), zap.String("user_id", user.UserID), zap.String("mode", string(f.mode)))
		res.Message = f.saveError(err)
		return res
	}

	res.Saved = true
	res.Destination = guard.Dashboard
	if f.mode == ModeEdit {
		res.Message = i18n.Success(MsgUpdated)
	} else {
		res.Message = i18n.Success(MsgCreated)
	}
	return res
}

func (f *Form) loadFailedKey() string {
	if f.mode == ModeEdit {
		return MsgLoadForEditFailed
	}
	return MsgLoadFailed
}

func (f *Form) saveFailedKey() string {
	if f.mode == ModeEdit {
		return MsgUpdateFailed
	}
	return MsgCreateFailed
}

// saveError muestra el mensaje del backend cuando lo hay.
func (f *Form) saveError(err error) i18n.Message {
	var be *backend.Error
	if errors.As(err, &be) && be.Message != "" {
		return i18n.Error(be.Message)
	}
	return i18n.Error(f.saveFailedKey())
}
