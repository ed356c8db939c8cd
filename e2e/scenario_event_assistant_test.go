package e2e

import (
	"context"
	"event-lab/auth"
	"event-lab/domain"
	apperrors "event-lab/errors"
	"event-lab/interpreter"
	"event-lab/services"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testEventAssistantSuite struct {
	BaseAppSuite
}

func TestEventAssistantSuite(t *testing.T) {
	suite.Run(t, &testEventAssistantSuite{})
}

func (s *testEventAssistantSuite) TestFullEventAssistantFlow() {
	ctx := context.Background()
	conversation := domain.ConversationID(uuid.NewString())
	var host, guest, lateGuest domain.User
	var event domain.Event

	// --- STEP 0: ACCOUNTS ---
	s.Step("Step 0: Sign up host and guests", func() {
		signUp := func(fullName, email string) domain.User {
			session, err := s.App.Auth.SignUp(auth.SignUpRequest{
				FullName: fullName, Email: email, Password: "secret1", ConfirmPassword: "secret1",
			})
			s.Require().NoError(err, email)
			return session.User
		}
		host = signUp("Hana Host", "host@event-lab.dev")
		guest = signUp("Gil Guest", "guest@event-lab.dev")
		lateGuest = signUp("Lou Late", "late@event-lab.dev")

		_, err := s.App.Auth.SignIn("host@event-lab.dev", "wrong!")
		s.Require().ErrorIs(err, apperrors.ErrInvalidCredentials)

		session, err := s.App.Auth.SignIn("HOST@event-lab.dev", "secret1")
		s.Require().NoError(err)
		s.Require().Equal(host.ID, session.User.ID, "Emails are case-insensitive")

		resumed, err := s.App.Auth.Resume(session.Token)
		s.Require().NoError(err)
		s.Require().Equal(host.ID, resumed.ID)
	})

	// --- STEP 1: CREATE AN EVENT ---
	s.Step("Step 1: Create an event tomorrow with a single seat", func() {
		poster := filepath.Join(s.T().TempDir(), "poster.gif")
		s.Require().NoError(os.WriteFile(poster, []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"), 0o644))
		imageURL, err := s.App.Images.Save(poster)
		s.Require().NoError(err)

		tomorrow := time.Now().UTC().AddDate(0, 0, 1)
		event, err = s.App.Events.CreateEvent(services.CreateEventRequest{
			CreatorID:    host.ID,
			Name:         "Rooftop Jazz",
			Description:  "Live jazz on the rooftop",
			Location:     "Dallas",
			Category:     "Concert / Music",
			Date:         time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 14, 0, 0, 0, time.UTC),
			MaxAttendees: 1,
			ImageURL:     imageURL,
		})
		s.Require().NoError(err)
		s.Require().Equal("Hana Host", event.CreatedByName)
		s.Require().Equal(imageURL, event.ImageURL)
		s.WaitForSnapshot(event.ID)
	})

	// --- STEP 2: CHAT ---
	s.Step("Step 2: Ask the assistant by date and by keyword", func() {
		s.Require().NoError(s.App.Assistant.Start(conversation))

		for _, query := range []string{"events tomorrow", "jazz in dallas"} {
			replies, err := s.App.Assistant.Ask(ctx, conversation, query)
			s.Require().NoError(err, query)
			s.Require().Len(replies, 2, query)
			s.Require().Contains(replies[0].Text, "Rooftop jazz", query)
			s.Require().True(replies[1].IsSuggestion(), query)
			s.Require().Equal(event.ID, replies[1].LinkedEventID, query)
		}

		replies, err := s.App.Assistant.Ask(ctx, conversation, "hello")
		s.Require().NoError(err)
		s.Require().Len(replies, 1)
		s.Require().Equal(interpreter.DefaultVocabulary().Replies.Greeting, replies[0].Text)

		history, _, err := s.App.Assistant.History(conversation, nil)
		s.Require().NoError(err)
		// welcome + 3 questions + 2x(reply+suggestion) + greeting
		s.Require().Len(history, 9)
	})

	// --- STEP 3: REGISTRATION ---
	s.Step("Step 3: Register until the event is full", func() {
		s.Require().NoError(s.App.Events.Register(guest.ID, event.ID))
		s.Require().ErrorIs(s.App.Events.Register(guest.ID, event.ID), apperrors.ErrAlreadyRegistered)
		s.Require().ErrorIs(s.App.Events.Register(lateGuest.ID, event.ID), apperrors.ErrEventFull)

		view, err := s.App.Events.GetEvent(guest.ID, event.ID)
		s.Require().NoError(err)
		s.Require().True(view.IsRegistered)
		s.Require().True(view.IsFull())

		attendees, err := s.App.Events.Attendees(event.ID)
		s.Require().NoError(err)
		s.Require().Equal([]string{"Gil Guest"}, attendees)
	})

	// --- STEP 4: LEAVE ---
	s.Step("Step 4: A seat frees up after leaving", func() {
		s.Require().NoError(s.App.Events.Leave(guest.ID, event.ID))
		s.Require().NoError(s.App.Events.Register(lateGuest.ID, event.ID))

		attendees, err := s.App.Events.Attendees(event.ID)
		s.Require().NoError(err)
		s.Require().Equal([]string{"Lou Late"}, attendees)

		_, err = s.App.Profiles.Rename(lateGuest.ID, "Lou Latecomer")
		s.Require().NoError(err)
		attendees, err = s.App.Events.Attendees(event.ID)
		s.Require().NoError(err)
		s.Require().Equal([]string{"Lou Latecomer"}, attendees)
	})

	// --- STEP 5: DELETE ---
	s.Step("Step 5: Only the creator can delete the event", func() {
		s.Require().ErrorIs(s.App.Events.DeleteEvent(guest.ID, event.ID), apperrors.ErrNotEventOwner)
		s.Require().NoError(s.App.Events.DeleteEvent(host.ID, event.ID))

		_, err := s.App.Events.GetEvent(host.ID, event.ID)
		s.Require().ErrorIs(err, apperrors.ErrEventNotFound)
		s.Require().Eventually(func() bool {
			return len(s.App.Snapshot.Events()) == 0
		}, s.Config.SnapshotTimeout, 20*time.Millisecond)
	})
}
