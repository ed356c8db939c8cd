package main

import (
	"bufio"
	"context"
	"errors"
	"event-lab/app"
	"event-lab/auth"
	"event-lab/domain"
	apperrors "event-lab/errors"
	"event-lab/internal"
	"event-lab/media"
	"event-lab/services"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

const formDateLayout = "2006-01-02 15:04"

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Assistant terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	email := flag.String("email", "", "Sign in with this email (required to register)")
	name := flag.String("name", "", "Full name, with -signup")
	signUp := flag.Bool("signup", false, "Create the account instead of signing in")
	conversation := flag.String("conversation", "", "Conversation to resume (defaults to the email or \"guest\")")
	flag.Parse()

	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	color.Enable = config.Colours
	logger := logs.GetLoggerFromString(config.LogLevel)

	application, err := app.New(config, logger)
	if err != nil {
		return exitConfig, err
	}
	defer func() {
		_ = application.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// Close, deferred above, waits for the workers before releasing badger.
	go application.Run(ctx)

	in := bufio.NewScanner(os.Stdin)
	session := &session{
		app:          application,
		out:          os.Stdout,
		in:           in,
		tokenPath:    config.SessionFilepath,
		conversation: domain.ConversationID("guest"),
	}
	if *email != "" {
		if err := session.authenticate(*email, *name, *signUp); err != nil {
			return exitRuntime, err
		}
	} else {
		session.resume()
	}
	if *conversation != "" {
		session.conversation = domain.ConversationID(*conversation)
	}

	err = session.loop(ctx)
	if err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

type session struct {
	app          *app.App
	out          io.Writer
	in           *bufio.Scanner
	lines        <-chan string
	tokenPath    string
	user         domain.UserID
	conversation domain.ConversationID
	lastEvents   []domain.EventID
}

// authenticate prompts for the password and stores the session token for the next run.
func (s *session) authenticate(email, fullName string, signUp bool) error {
	password := s.prompt("Password: ")
	var opened services.Session
	var err error
	if signUp {
		opened, err = s.app.Auth.SignUp(auth.SignUpRequest{
			FullName:        fullName,
			Email:           email,
			Password:        password,
			ConfirmPassword: s.prompt("Confirm password: "),
		})
	} else {
		opened, err = s.app.Auth.SignIn(email, password)
	}
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return fmt.Errorf("sign in: %w", err)
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		return fmt.Errorf("sign up: this email is already registered")
	case err != nil:
		return fmt.Errorf("authentication: %w", err)
	}
	if err := os.WriteFile(s.tokenPath, []byte(opened.Token), 0o600); err != nil {
		color.Yellow.Printf("Session not saved: %v\n", err)
	}
	s.signedIn(opened.User)
	return nil
}

// resume reuses the stored token. A stale token is removed and the session stays anonymous.
func (s *session) resume() {
	token, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return
	}
	user, err := s.app.Auth.Resume(strings.TrimSpace(string(token)))
	if err != nil {
		_ = os.Remove(s.tokenPath)
		color.Gray.Println("Previous session expired, continuing as guest")
		return
	}
	s.signedIn(user)
}

func (s *session) signedIn(user domain.User) {
	s.user = user.ID
	s.conversation = domain.ConversationID(user.ID)
	color.Green.Printf("Signed in as %s\n", displayUser(user))
}

func (s *session) logout() {
	_ = os.Remove(s.tokenPath)
	s.user = ""
	s.conversation = domain.ConversationID("guest")
	color.Green.Println("Signed out.")
}

// prompt reads from the loop's line channel once it runs, so stdin has a single reader.
func (s *session) prompt(label string) string {
	color.Cyan.Print(label)
	if s.lines != nil {
		line, ok := <-s.lines
		if !ok {
			return ""
		}
		return strings.TrimSpace(line)
	}
	if !s.in.Scan() {
		return ""
	}
	return strings.TrimSpace(s.in.Text())
}

func (s *session) loop(ctx context.Context) error {
	if err := s.app.Assistant.Start(s.conversation); err != nil {
		return err
	}
	if err := s.printHistory(); err != nil {
		return err
	}
	color.Gray.Println("Commands: /events [category], /search <text>, /mine, /register <n|id>, /leave <n|id>, /attendees <n|id>, /create, /delete <n|id>, /rename <name>, /logout, /quit")

	lines := make(chan string)
	s.lines = lines
	go func() {
		defer close(lines)
		for s.in.Scan() {
			lines <- s.in.Text()
		}
	}()

	for {
		color.Cyan.Print("> ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := s.handle(ctx, strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// handle returns an error only when the session cannot go on.
func (s *session) handle(ctx context.Context, line string) (bool, error) {
	command, argument, _ := strings.Cut(line, " ")
	argument = strings.TrimSpace(argument)

	var err error
	switch command {
	case "":
		return false, nil
	case "/quit", "/exit":
		return true, nil
	case "/events":
		err = s.listEvents(services.EventFilter{Category: argument})
	case "/search":
		err = s.search(ctx, argument)
	case "/mine":
		err = s.mine()
	case "/register":
		err = s.register(argument)
	case "/leave":
		err = s.leave(argument)
	case "/attendees":
		err = s.attendees(argument)
	case "/create":
		err = s.create()
	case "/delete":
		err = s.delete(argument)
	case "/rename":
		err = s.rename(argument)
	case "/logout":
		s.logout()
		err = s.app.Assistant.Start(s.conversation)
	default:
		var replies []domain.ChatMessage
		replies, err = s.app.Assistant.Ask(ctx, s.conversation, line)
		s.printReplies(replies)
	}
	return false, s.report(err)
}

// report prints business errors and lets storage errors end the session.
func (s *session) report(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrLoginRequired):
		color.Yellow.Println("Please sign in with -email to do this.")
	case errors.Is(err, apperrors.ErrInvalidUser):
		color.Yellow.Println("That name is not valid.")
	case errors.Is(err, apperrors.ErrScheduleConflict):
		color.Yellow.Println("Already registered for another event at that time!")
	case errors.Is(err, apperrors.ErrEventFull),
		errors.Is(err, apperrors.ErrAlreadyRegistered),
		errors.Is(err, apperrors.ErrNotRegistered),
		errors.Is(err, apperrors.ErrEventNotFound),
		errors.Is(err, apperrors.ErrInvalidEvent),
		errors.Is(err, apperrors.ErrNotEventOwner),
		errors.Is(err, apperrors.ErrRegistrationBusy),
		errors.Is(err, media.ErrUnsupportedImage),
		errors.Is(err, media.ErrImageTooLarge),
		errors.Is(err, os.ErrNotExist):
		color.Yellow.Println(capitalize(err.Error()))
	default:
		return err
	}
	return nil
}

func (s *session) printHistory() error {
	history, _, err := s.app.Assistant.History(s.conversation, nil)
	if err != nil {
		return err
	}
	for i := len(history) - 1; i >= 0; i-- {
		s.printMessage(history[i])
	}
	return nil
}

func (s *session) printReplies(replies []domain.ChatMessage) {
	s.lastEvents = s.lastEvents[:0]
	for _, m := range replies {
		s.printMessage(m)
		if m.IsSuggestion() {
			s.lastEvents = append(s.lastEvents, m.LinkedEventID)
		}
	}
}

func (s *session) printMessage(m domain.ChatMessage) {
	switch {
	case m.Sender == domain.SenderUser:
		color.Gray.Printf("you: %s\n", m.Text)
	case m.IsSuggestion():
		color.Magenta.Printf("  → %s [%s]\n", m.Text, m.LinkedEventID)
	default:
		color.White.Println(m.Text)
	}
}

func (s *session) listEvents(filter services.EventFilter) error {
	views, err := s.app.Events.ListUpcoming(s.user, filter)
	if err != nil {
		return err
	}
	s.renderEvents(views)
	return nil
}

func (s *session) search(ctx context.Context, text string) error {
	views, err := s.app.Events.Search(ctx, s.user, text)
	if err != nil {
		return err
	}
	s.renderEvents(views)
	return nil
}

func (s *session) mine() error {
	created, err := s.app.Events.CreatedBy(s.user)
	if err != nil {
		return err
	}
	color.Bold.Println("Created")
	s.renderEvents(created)
	registered, err := s.app.Events.RegisteredFor(s.user)
	if err != nil {
		return err
	}
	color.Bold.Println("Registered")
	s.renderEvents(registered)
	return nil
}

func (s *session) renderEvents(views []domain.EventView) {
	s.lastEvents = s.lastEvents[:0]
	table := tablewriter.NewWriter(s.out)
	table.SetHeader([]string{"#", "Name", "Category", "Location", "Date", "Seats", "Host", ""})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for i, v := range views {
		s.lastEvents = append(s.lastEvents, v.ID)
		state := ""
		switch {
		case v.IsRegistered:
			state = "registered"
		case v.IsFull():
			state = "full"
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			v.Name,
			v.Category,
			v.Location,
			v.Date.Local().Format("Mon Jan 02 2006 15:04"),
			fmt.Sprintf("%d / %d", v.RegisteredCount, v.MaxAttendees),
			v.CreatedByName,
			state,
		})
	}
	table.Render()
}

func (s *session) register(argument string) error {
	id := s.resolve(argument)
	if err := s.app.Events.Register(s.user, id); err != nil {
		return err
	}
	color.Green.Println("Registered!")
	return nil
}

func (s *session) leave(argument string) error {
	id := s.resolve(argument)
	if err := s.app.Events.Leave(s.user, id); err != nil {
		return err
	}
	color.Green.Println("Left event.")
	return nil
}

// create walks through the event form, one prompt per field.
func (s *session) create() error {
	if s.user == "" {
		return apperrors.ErrLoginRequired
	}
	request := services.CreateEventRequest{
		CreatorID:   s.user,
		Name:        s.prompt("Name: "),
		Description: s.prompt("Description: "),
		Location:    s.prompt("Location: "),
	}
	color.Gray.Println(strings.Join(domain.Categories, " | "))
	request.Category = s.prompt("Category: ")

	date, err := time.ParseInLocation(formDateLayout, s.prompt("Date ("+formDateLayout+"): "), time.Local)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidEvent, err)
	}
	request.Date = date
	if limit := s.prompt("Max attendees (empty for default): "); limit != "" {
		if request.MaxAttendees, err = strconv.Atoi(limit); err != nil {
			return fmt.Errorf("%w: max attendees: %v", apperrors.ErrInvalidEvent, err)
		}
	}
	if path := s.prompt("Image file (optional): "); path != "" {
		if request.ImageURL, err = s.app.Images.Save(path); err != nil {
			return err
		}
	}

	event, err := s.app.Events.CreateEvent(request)
	if err != nil {
		return err
	}
	color.Green.Printf("Created %s (%s)\n", event.Name, event.ID)
	return nil
}

func (s *session) delete(argument string) error {
	if err := s.app.Events.DeleteEvent(s.user, s.resolve(argument)); err != nil {
		return err
	}
	color.Green.Println("Event deleted.")
	return nil
}

func (s *session) rename(fullName string) error {
	user, err := s.app.Profiles.Rename(s.user, fullName)
	if err != nil {
		return err
	}
	color.Green.Printf("You are now %s\n", displayUser(user))
	return nil
}

func (s *session) attendees(argument string) error {
	names, err := s.app.Events.Attendees(s.resolve(argument))
	if err != nil {
		return err
	}
	if len(names) == 0 {
		color.Gray.Println("No attendees yet")
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(s.out, "  "+n)
	}
	return nil
}

// resolve accepts a position in the last listing or a raw event id.
func (s *session) resolve(argument string) domain.EventID {
	if n, err := strconv.Atoi(argument); err == nil && n >= 1 && n <= len(s.lastEvents) {
		return s.lastEvents[n-1]
	}
	return domain.EventID(argument)
}

func displayUser(u domain.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
