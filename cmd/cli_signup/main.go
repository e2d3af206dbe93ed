package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"jobsy/internal/backend"
	"jobsy/internal/config"
	"jobsy/internal/domain"
	"jobsy/internal/guard"
	"jobsy/internal/i18n"
	"jobsy/internal/profileform"
	"jobsy/internal/signup"
)

// ui agrupa lo que necesitan los menus del cliente de terminal.
type ui struct {
	reader  *bufio.Reader
	logger  *zap.Logger
	catalog *i18n.Catalog
	lang    language.Tag
	client  backend.Client

	// signedOut queda en true cuando el guard manda a login tras un fin de sesion.
	signedOut atomic.Bool
}

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewExample()
	defer logger.Sync()

	catalog, err := i18n.Load("en")
	if err != nil {
		log.Fatal(err)
	}

	client := backend.NewHTTPClient(cfg.BackendURL, cfg.BackendAPIKey, nil, logger)
	u := &ui{
		reader:  bufio.NewReader(os.Stdin),
		logger:  logger,
		catalog: catalog,
		lang:    catalog.Negotiate(cfg.Language, ""),
		client:  client,
	}

	unsubscribe := guard.New(logger, client).Watch(client, u.sessionChanged)
	defer unsubscribe()

	for {
		fmt.Println("\n===== Jobsy =====")
		if u.signedOut.Load() {
			fmt.Println("(sin sesion)")
		}
		fmt.Println("[1] Crear cuenta")
		fmt.Println("[2] Iniciar sesion")
		fmt.Println("[3] Completar perfil")
		fmt.Println("[4] Editar perfil")
		fmt.Println("[5] Cerrar sesion")
		fmt.Println("[6] Salir")
		fmt.Print("Selecciona una opcion: ")

		switch u.readLine() {
		case "1":
			u.signupFlow(ctx)
		case "2":
			u.loginFlow(ctx)
		case "3":
			u.profileFlow(ctx, profileform.ModeCreate)
		case "4":
			u.profileFlow(ctx, profileform.ModeEdit)
		case "5":
			if err := client.SignOut(ctx); err != nil {
				fmt.Printf("Error cerrando sesion: %v\n", err)
			}
		case "6":
			return
		default:
			fmt.Println("Opcion invalida.")
		}
	}
}

// sessionChanged recibe la decision del guard cuando la sesion termina en otro lado.
func (u *ui) sessionChanged(dest guard.Destination, err error) {
	if err != nil {
		u.show(i18n.Error(signup.MsgProfileCheckFailed))
		return
	}
	fmt.Printf("\n[sesion cerrada] Destino: %s\n", dest)
	if dest == guard.Login {
		u.signedOut.Store(true)
		fmt.Println("Vuelve a iniciar sesion con la opcion [2].")
	}
}

func (u *ui) readLine() string {
	line, _ := u.reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func (u *ui) prompt(label string) string {
	fmt.Print(label)
	return u.readLine()
}

func (u *ui) show(msg i18n.Message) {
	if msg.Empty() {
		return
	}
	prefix := "*"
	if msg.Kind == i18n.KindError {
		prefix = "!"
	}
	fmt.Printf("%s %s\n", prefix, u.catalog.Render(u.lang, msg))
}

// signupFlow recorre los cuatro pasos del registro sobre un Flow local.
func (u *ui) signupFlow(ctx context.Context) {
	flow := signup.NewFlow(uuid.NewString(), u.client, signup.Options{Logger: u.logger})
	defer flow.Close()

	m := flow.Snapshot()
	for m.State != signup.Verified {
		fmt.Printf("\n--- Paso %d de 4 ---\n", m.State.Step())
		events := u.nextEvents(m)
		if len(events) == 0 {
			return
		}

		for _, ev := range events {
			next, err := flow.Dispatch(ctx, ev)
			if errors.Is(err, signup.ErrClosed) {
				return
			}
			m = next
			if err != nil {
				var ve *signup.ValidationError
				if !errors.As(err, &ve) && m.Message.Empty() {
					fmt.Printf("! %v\n", err)
				}
				break
			}
		}
		u.show(m.Message)
	}

	u.signedOut.Store(false)
	fmt.Printf("Destino: %s\n", m.Destination)
	if m.Destination == guard.CompleteProfile {
		u.profileFlow(ctx, profileform.ModeCreate)
	}
}

// nextEvents pide al usuario la entrada del paso actual. Una lista vacia significa que abandono el registro.
func (u *ui) nextEvents(m signup.Machine) []signup.Event {
	switch m.State {
	case signup.CollectingCredentials:
		email := u.prompt("Email: ")
		password := u.prompt("Contraseña: ")
		return []signup.Event{signup.EditCredentials{Email: email, Password: password}, signup.Next{}}

	case signup.AcceptingTerms:
		switch strings.ToLower(u.prompt("¿Aceptas los terminos y condiciones? [s/n/atras]: ")) {
		case "s", "si", "y", "yes":
			return []signup.Event{signup.SetTerms{Agreed: true}, signup.Next{}}
		case "atras":
			return []signup.Event{signup.Back{}}
		default:
			return []signup.Event{signup.SetTerms{Agreed: false}, signup.Next{}}
		}

	case signup.SelectingRole:
		answer := strings.ToLower(u.prompt("¿Quieres contratar (hire) o buscar trabajo (work)? [hire/work/atras]: "))
		if answer == "atras" {
			return []signup.Event{signup.Back{}}
		}
		role, ok := domain.ParseRole(answer)
		if !ok {
			role = domain.Role(answer)
		}
		return []signup.Event{signup.ChooseRole{Role: role}, signup.Next{}}

	case signup.AwaitingAccountCreation:
		switch strings.ToLower(u.prompt("¿Crear la cuenta ahora? [s/atras/salir]: ")) {
		case "atras":
			return []signup.Event{signup.Back{}}
		case "salir":
			return nil
		}
		return []signup.Event{signup.SubmitRegistration{}}

	case signup.AwaitingOtpEntry:
		if m.Cooldown > 0 {
			fmt.Printf("(puedes pedir otro codigo en %d s)\n", m.Cooldown)
		}
		if !m.Challenge.Active() {
			if strings.ToLower(u.prompt("Enter para enviar el codigo [salir]: ")) == "salir" {
				return nil
			}
			return []signup.Event{signup.RequestCode{}}
		}
		code := u.prompt("Codigo de 6 digitos [r = reenviar, salir]: ")
		switch strings.ToLower(code) {
		case "r":
			return []signup.Event{signup.RequestCode{}}
		case "salir":
			return nil
		}
		return []signup.Event{signup.EnterCode{Code: code}, signup.SubmitCode{}}
	}
	return nil
}

func (u *ui) loginFlow(ctx context.Context) {
	email := u.prompt("Email: ")
	password := u.prompt("Contraseña: ")

	identity, err := u.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		var be *backend.Error
		if errors.As(err, &be) {
			u.show(i18n.Error(be.Message))
		} else {
			fmt.Printf("! %v\n", err)
		}
		return
	}

	dest, err := guard.New(u.logger, u.client).Resolve(ctx, identity.UserID)
	if err != nil {
		u.show(i18n.Error(signup.MsgProfileCheckFailed))
		return
	}
	u.signedOut.Store(false)
	fmt.Printf("Sesion iniciada como %s. Destino: %s\n", identity.Email, dest)
	if dest == guard.CompleteProfile {
		u.profileFlow(ctx, profileform.ModeCreate)
	}
}

// profileFlow carga el formulario, pide cada campo (enter conserva el valor) y lo envia.
func (u *ui) profileFlow(ctx context.Context, mode profileform.Mode) {
	form := profileform.New(u.logger, mode, u.client, nil)
	res := form.Load(ctx)
	u.show(res.Message)
	if res.Destination != "" {
		fmt.Printf("Destino: %s\n", res.Destination)
		return
	}

	v := res.Values
	fmt.Printf("\n--- Perfil (%s) ---\n", v.UserType)
	v.FullName = u.field("Nombre completo", v.FullName)
	v.Nationality = u.field("Nacionalidad", v.Nationality)
	v.KnownLanguages = u.field("Idiomas (separados por coma)", v.KnownLanguages)
	v.Age = u.field("Edad", v.Age)
	v.Gender = u.field("Genero", v.Gender)
	v.TalentSkills = u.field("Habilidades (separadas por coma)", v.TalentSkills)
	v.JobExperience = u.field("Experiencia laboral", v.JobExperience)
	v.PhoneNumber = u.field("Telefono", v.PhoneNumber)

	res = form.Submit(ctx, v)
	u.show(res.Message)
	if res.Saved {
		fmt.Printf("Destino: %s\n", res.Destination)
	}
}

func (u *ui) field(label, current string) string {
	if current != "" {
		label = fmt.Sprintf("%s [%s]", label, current)
	}
	answer := u.prompt(label + ": ")
	if answer == "" {
		return current
	}
	return answer
}
