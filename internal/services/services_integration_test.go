package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/routegenius/logistics-backend/internal/apperr"
	"github.com/routegenius/logistics-backend/internal/database"
	"github.com/routegenius/logistics-backend/internal/models"
	"github.com/routegenius/logistics-backend/internal/services"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ServicesIntegrationTestSuite runs the user, parcel, feedback and
// notification services against a real PostgreSQL container.
type ServicesIntegrationTestSuite struct {
	suite.Suite
	container     *postgres.PostgresContainer
	db            *gorm.DB
	users         *services.UserService
	parcels       *services.ParcelService
	feedback      *services.FeedbackService
	notifications *services.NotificationService
}

func TestServicesIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(ServicesIntegrationTestSuite))
}

func (s *ServicesIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{TranslateError: true})
	s.Require().NoError(err)
	s.db = db

	s.Require().NoError(database.RunMigrations(db))
}

func (s *ServicesIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("TRUNCATE TABLE notifications, feedback, parcels, users RESTART IDENTITY CASCADE").Error)

	s.users = services.NewUserService(s.db)
	s.notifications = services.NewNotificationService(s.db, nil)
	s.parcels = services.NewParcelService(s.db, s.notifications)
	s.feedback = services.NewFeedbackService(s.db)
}

func (s *ServicesIntegrationTestSuite) TearDownSuite() {
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *ServicesIntegrationTestSuite) createUser(username string) *models.User {
	user, err := s.users.Register(context.Background(), &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	s.Require().NoError(err)
	return user
}

func (s *ServicesIntegrationTestSuite) createParcel(ownerID uint, recipientEmail string) *models.Parcel {
	parcel, err := s.parcels.Create(context.Background(), &models.Parcel{
		SenderName:       "Acme Ltd",
		SenderAddress:    "1 Factory Road",
		RecipientName:    "Jane Roe",
		RecipientAddress: "2 Home Street",
		RecipientEmail:   recipientEmail,
		Description:      "Books",
	}, ownerID)
	s.Require().NoError(err)
	return parcel
}

func (s *ServicesIntegrationTestSuite) setParcelStatus(parcelID uint, status models.ParcelStatus) {
	s.Require().NoError(s.db.Model(&models.Parcel{}).Where("id = ?", parcelID).Update("status", status).Error)
}

// --- User directory ---

func (s *ServicesIntegrationTestSuite) TestRegister_ForcesUserRole() {
	user, err := s.users.Register(context.Background(), &models.User{
		Username: "jane",
		Email:    "jane@example.com",
		Password: "secret123",
		Role:     models.RoleAdmin, // must be ignored
	})
	s.Require().NoError(err)

	s.Equal(models.RoleUser, user.Role)
	s.NotEmpty(user.PasswordHash)
	s.NoError(user.CheckPassword("secret123"))
}

func (s *ServicesIntegrationTestSuite) TestRegister_DuplicateEmail() {
	s.createUser("jane")

	_, err := s.users.Register(context.Background(), &models.User{
		Username: "someone-else",
		Email:    "jane@example.com",
		Password: "secret123",
	})
	s.Require().Error(err)
	s.True(apperr.IsBadRequest(err))
	s.Equal("User with this email or username already exists.", err.Error())
}

func (s *ServicesIntegrationTestSuite) TestRegister_DuplicateUsername() {
	s.createUser("jane")

	_, err := s.users.Register(context.Background(), &models.User{
		Username: "jane",
		Email:    "other@example.com",
		Password: "secret123",
	})
	s.Require().Error(err)
	s.True(apperr.IsBadRequest(err))
}

func (s *ServicesIntegrationTestSuite) TestCreateByAdmin_KeepsSuppliedRole() {
	user, err := s.users.CreateByAdmin(context.Background(), &models.User{
		Username: "boss",
		Email:    "boss@example.com",
		Password: "secret123",
	}, models.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, user.Role)
}

func (s *ServicesIntegrationTestSuite) TestFindByIdentifier() {
	created := s.createUser("jane")

	byUsername, err := s.users.FindByIdentifier(context.Background(), "jane")
	s.Require().NoError(err)
	s.Equal(created.ID, byUsername.ID)

	byEmail, err := s.users.FindByIdentifier(context.Background(), "jane@example.com")
	s.Require().NoError(err)
	s.Equal(created.ID, byEmail.ID)

	_, err = s.users.FindByIdentifier(context.Background(), "nobody")
	s.True(apperr.IsNotFound(err))
}

func (s *ServicesIntegrationTestSuite) TestUpdateUser_RehashesOnlyNewCredential() {
	user := s.createUser("jane")
	originalHash := user.PasswordHash

	firstName := "Jane"
	updated, err := s.users.Update(context.Background(), user.ID, services.UserUpdate{FirstName: &firstName})
	s.Require().NoError(err)
	s.Equal("Jane", updated.FirstName)
	s.Equal(originalHash, updated.PasswordHash)

	updated, err = s.users.Update(context.Background(), user.ID, services.UserUpdate{Password: "newsecret"})
	s.Require().NoError(err)
	s.NotEqual(originalHash, updated.PasswordHash)
	s.NoError(updated.CheckPassword("newsecret"))
}

func (s *ServicesIntegrationTestSuite) TestUpdateUser_RoleOnlyWhenSupplied() {
	user := s.createUser("jane")

	name := "Jane"
	updated, err := s.users.Update(context.Background(), user.ID, services.UserUpdate{FirstName: &name})
	s.Require().NoError(err)
	s.Equal(models.RoleUser, updated.Role)

	role := models.RoleAdmin
	updated, err = s.users.Update(context.Background(), user.ID, services.UserUpdate{Role: &role})
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, updated.Role)
}

func (s *ServicesIntegrationTestSuite) TestUpdateUser_NotFound() {
	_, err := s.users.Update(context.Background(), 9999, services.UserUpdate{})
	s.True(apperr.IsNotFound(err))
}

func (s *ServicesIntegrationTestSuite) TestDeleteUser() {
	user := s.createUser("jane")

	s.Require().NoError(s.users.Delete(context.Background(), user.ID))

	err := s.users.Delete(context.Background(), user.ID)
	s.True(apperr.IsNotFound(err))
}

// --- Parcel registry ---

func (s *ServicesIntegrationTestSuite) TestCreateParcel_AssignsTrackingCodeAndPendingStatus() {
	owner := s.createUser("owner")

	parcel, err := s.parcels.Create(context.Background(), &models.Parcel{
		SenderName:       "Acme Ltd",
		SenderAddress:    "1 Factory Road",
		RecipientName:    "Jane Roe",
		RecipientAddress: "2 Home Street",
		Status:           models.StatusDelivered, // must be ignored
	}, owner.ID)
	s.Require().NoError(err)

	s.Equal(models.StatusPending, parcel.Status)
	s.Regexp(`^[A-Z0-9]{16}$`, parcel.TrackingCode)
	s.Equal(owner.ID, parcel.UserID)
}

func (s *ServicesIntegrationTestSuite) TestCreateParcel_UnknownOwner() {
	_, err := s.parcels.Create(context.Background(), &models.Parcel{
		SenderName:       "Acme Ltd",
		SenderAddress:    "1 Factory Road",
		RecipientName:    "Jane Roe",
		RecipientAddress: "2 Home Street",
	}, 9999)
	s.True(apperr.IsNotFound(err))
}

func (s *ServicesIntegrationTestSuite) TestCreateParcel_EmptyRecipientEmailStillPersists() {
	owner := s.createUser("owner")

	parcel := s.createParcel(owner.ID, "")

	var stored models.Parcel
	s.Require().NoError(s.db.First(&stored, parcel.ID).Error)
	s.Equal("", stored.RecipientEmail)
}

func (s *ServicesIntegrationTestSuite) TestCreateParcel_TrackingCodesAreUnique() {
	owner := s.createUser("owner")

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		parcel := s.createParcel(owner.ID, "")
		s.False(seen[parcel.TrackingCode])
		seen[parcel.TrackingCode] = true
	}
}

func (s *ServicesIntegrationTestSuite) TestUpdateParcel_AllowsForwardTransition() {
	owner := s.createUser("owner")
	parcel := s.createParcel(owner.ID, "")

	status := models.StatusDispatched
	updated, err := s.parcels.Update(context.Background(), parcel.ID, services.ParcelUpdate{
		SenderName:       parcel.SenderName,
		SenderAddress:    parcel.SenderAddress,
		RecipientName:    parcel.RecipientName,
		RecipientAddress: parcel.RecipientAddress,
		CurrentLocation:  "Depot 7",
		Status:           &status,
	})
	s.Require().NoError(err)
	s.Equal(models.StatusDispatched, updated.Status)
	s.Equal("Depot 7", updated.CurrentLocation)
}

func (s *ServicesIntegrationTestSuite) TestUpdateParcel_RejectsIllegalTransition() {
	owner := s.createUser("owner")
	parcel := s.createParcel(owner.ID, "")
	s.setParcelStatus(parcel.ID, models.StatusDelivered)

	status := models.StatusPending
	_, err := s.parcels.Update(context.Background(), parcel.ID, services.ParcelUpdate{
		SenderName:       parcel.SenderName,
		SenderAddress:    parcel.SenderAddress,
		RecipientName:    parcel.RecipientName,
		RecipientAddress: parcel.RecipientAddress,
		Status:           &status,
	})
	s.Require().Error(err)
	s.True(apperr.IsBadRequest(err))
}

func (s *ServicesIntegrationTestSuite) TestUpdateParcel_RefreshesUpdatedAtOnly() {
	owner := s.createUser("owner")
	parcel := s.createParcel(owner.ID, "")
	createdAt := parcel.CreatedAt
	previousUpdatedAt := parcel.UpdatedAt

	updated, err := s.parcels.Update(context.Background(), parcel.ID, services.ParcelUpdate{
		SenderName:       "New Sender",
		SenderAddress:    parcel.SenderAddress,
		RecipientName:    parcel.RecipientName,
		RecipientAddress: parcel.RecipientAddress,
	})
	s.Require().NoError(err)
	s.Equal("New Sender", updated.SenderName)
	s.True(updated.CreatedAt.Equal(createdAt))
	s.False(updated.UpdatedAt.Before(previousUpdatedAt))
}

func (s *ServicesIntegrationTestSuite) TestUpdateParcel_NotFound() {
	_, err := s.parcels.Update(context.Background(), 9999, services.ParcelUpdate{})
	s.True(apperr.IsNotFound(err))
}

func (s *ServicesIntegrationTestSuite) TestListPaginated() {
	owner := s.createUser("owner")
	for i := 0; i < 15; i++ {
		s.createParcel(owner.ID, "")
	}

	page, err := s.parcels.ListPaginated(context.Background(), 0, 10, "id", "asc", "")
	s.Require().NoError(err)
	s.Len(page.Items, 10)
	s.Equal(int64(15), page.TotalElements)
	s.Equal(2, page.TotalPages)

	page, err = s.parcels.ListPaginated(context.Background(), 1, 10, "id", "asc", "")
	s.Require().NoError(err)
	s.Len(page.Items, 5)
}

func (s *ServicesIntegrationTestSuite) TestListPaginated_SearchAcrossFields() {
	owner := s.createUser("owner")
	target := s.createParcel(owner.ID, "")
	s.createParcel(owner.ID, "")

	// Search by tracking code fragment, case-insensitively
	fragment := target.TrackingCode[2:10]
	page, err := s.parcels.ListPaginated(context.Background(), 0, 10, "id", "asc", fragment)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal(target.ID, page.Items[0].ID)

	// Search by recipient name, different case
	page, err = s.parcels.ListPaginated(context.Background(), 0, 10, "id", "asc", "jane ROE")
	s.Require().NoError(err)
	s.Len(page.Items, 2)

	// No match
	page, err = s.parcels.ListPaginated(context.Background(), 0, 10, "id", "asc", "no-such-parcel")
	s.Require().NoError(err)
	s.Empty(page.Items)
	s.Equal(int64(0), page.TotalElements)
}

func (s *ServicesIntegrationTestSuite) TestListByOwner() {
	owner := s.createUser("owner")
	other := s.createUser("other")
	s.createParcel(owner.ID, "")
	s.createParcel(owner.ID, "")
	s.createParcel(other.ID, "")

	owned, err := s.parcels.ListByOwner(context.Background(), owner.ID)
	s.Require().NoError(err)
	s.Len(owned, 2)

	_, err = s.parcels.ListByOwner(context.Background(), 9999)
	s.True(apperr.IsNotFound(err))
}

func (s *ServicesIntegrationTestSuite) TestFindByTrackingCode() {
	owner := s.createUser("owner")
	parcel := s.createParcel(owner.ID, "")

	found, err := s.parcels.FindByTrackingCode(context.Background(), parcel.TrackingCode)
	s.Require().NoError(err)
	s.Equal(parcel.ID, found.ID)

	_, err = s.parcels.FindByTrackingCode(context.Background(), "0000000000000000")
	s.True(apperr.IsNotFound(err))
}

func (s *ServicesIntegrationTestSuite) TestDeleteParcel() {
	owner := s.createUser("owner")
	parcel := s.createParcel(owner.ID, "")

	s.Require().NoError(s.parcels.Delete(context.Background(), parcel.ID))

	err := s.parcels.Delete(context.Background(), parcel.ID)
	s.True(apperr.IsNotFound(err))
}

// --- Feedback store ---

func (s *ServicesIntegrationTestSuite) deliveredParcel(ownerID uint) *models.Parcel {
	parcel := s.createParcel(ownerID, "")
	s.setParcelStatus(parcel.ID, models.StatusDelivered)
	parcel.Status = models.StatusDelivered
	return parcel
}

func (s *ServicesIntegrationTestSuite) TestSubmitFeedback_Success() {
	owner := s.createUser("owner")
	parcel := s.deliveredParcel(owner.ID)

	feedback, err := s.feedback.Submit(context.Background(), owner.ID, parcel.ID, "Arrived on time.", 5)
	s.Require().NoError(err)
	s.Equal(5, feedback.Rating)
	s.Equal(owner.ID, feedback.UserID)
	s.Equal(parcel.ID, feedback.ParcelID)
	s.False(feedback.SubmittedAt.IsZero())

	exists, err := s.feedback.ExistsForParcel(context.Background(), parcel.ID)
	s.Require().NoError(err)
	s.True(exists)

	stored, err := s.feedback.GetByID(context.Background(), feedback.ID)
	s.Require().NoError(err)
	s.Equal("Arrived on time.", stored.FeedbackText)
}

func (s *ServicesIntegrationTestSuite) TestSubmitFeedback_UnknownUser() {
	owner := s.createUser("owner")
	parcel := s.deliveredParcel(owner.ID)

	_, err := s.feedback.Submit(context.Background(), 9999, parcel.ID, "text", 4)
	s.True(apperr.IsNotFound(err))
}

func (s *ServicesIntegrationTestSuite) TestSubmitFeedback_UnknownParcel() {
	owner := s.createUser("owner")

	_, err := s.feedback.Submit(context.Background(), owner.ID, 9999, "text", 4)
	s.True(apperr.IsNotFound(err))
}

func (s *ServicesIntegrationTestSuite) TestSubmitFeedback_ParcelNotDelivered() {
	owner := s.createUser("owner")
	parcel := s.createParcel(owner.ID, "") // still PENDING

	_, err := s.feedback.Submit(context.Background(), owner.ID, parcel.ID, "text", 4)
	s.Require().Error(err)
	s.True(apperr.IsBadRequest(err))
	s.Equal("Feedback can only be submitted for delivered parcels.", err.Error())
}

func (s *ServicesIntegrationTestSuite) TestSubmitFeedback_NotOwner() {
	owner := s.createUser("owner")
	intruder := s.createUser("intruder")
	parcel := s.deliveredParcel(owner.ID)

	_, err := s.feedback.Submit(context.Background(), intruder.ID, parcel.ID, "text", 4)
	s.Require().Error(err)
	s.True(apperr.IsForbidden(err))
}

func (s *ServicesIntegrationTestSuite) TestSubmitFeedback_Duplicate() {
	owner := s.createUser("owner")
	parcel := s.deliveredParcel(owner.ID)

	_, err := s.feedback.Submit(context.Background(), owner.ID, parcel.ID, "first", 4)
	s.Require().NoError(err)

	_, err = s.feedback.Submit(context.Background(), owner.ID, parcel.ID, "second", 4)
	s.Require().Error(err)
	s.True(apperr.IsBadRequest(err))

	all, err := s.feedback.ListAll(context.Background())
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *ServicesIntegrationTestSuite) TestSubmitFeedback_RatingOutOfRange() {
	owner := s.createUser("owner")
	parcel := s.deliveredParcel(owner.ID)

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := s.feedback.Submit(context.Background(), owner.ID, parcel.ID, "text", rating)
		s.Require().Error(err)
		s.True(apperr.IsBadRequest(err))
	}

	exists, err := s.feedback.ExistsForParcel(context.Background(), parcel.ID)
	s.Require().NoError(err)
	s.False(exists, "failed submissions must not write")
}

func (s *ServicesIntegrationTestSuite) TestDeleteFeedback() {
	owner := s.createUser("owner")
	parcel := s.deliveredParcel(owner.ID)
	feedback, err := s.feedback.Submit(context.Background(), owner.ID, parcel.ID, "text", 4)
	s.Require().NoError(err)

	s.Require().NoError(s.feedback.Delete(context.Background(), feedback.ID))

	err = s.feedback.Delete(context.Background(), feedback.ID)
	s.True(apperr.IsNotFound(err))
}

// --- Notification store ---

func (s *ServicesIntegrationTestSuite) TestParcelLifecycleCreatesNotifications() {
	owner := s.createUser("owner")
	parcel := s.createParcel(owner.ID, "")

	list, err := s.notifications.ListForUser(context.Background(), owner.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Contains(list[0].Message, parcel.TrackingCode)
	s.False(list[0].Read)

	status := models.StatusDispatched
	_, err = s.parcels.Update(context.Background(), parcel.ID, services.ParcelUpdate{
		SenderName:       parcel.SenderName,
		SenderAddress:    parcel.SenderAddress,
		RecipientName:    parcel.RecipientName,
		RecipientAddress: parcel.RecipientAddress,
		Status:           &status,
	})
	s.Require().NoError(err)

	list, err = s.notifications.ListForUser(context.Background(), owner.ID)
	s.Require().NoError(err)
	s.Len(list, 2)
}

func (s *ServicesIntegrationTestSuite) TestUnreadCountAndMarkRead() {
	owner := s.createUser("owner")
	parcel := s.createParcel(owner.ID, "")

	first, err := s.notifications.Create(context.Background(), owner.ID, parcel.ID, "one")
	s.Require().NoError(err)
	_, err = s.notifications.Create(context.Background(), owner.ID, parcel.ID, "two")
	s.Require().NoError(err)

	// One notification came from parcel creation itself.
	count, err := s.notifications.UnreadCount(context.Background(), owner.ID)
	s.Require().NoError(err)
	s.Equal(int64(3), count)

	s.Require().NoError(s.notifications.MarkRead(context.Background(), first.ID))

	count, err = s.notifications.UnreadCount(context.Background(), owner.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

func (s *ServicesIntegrationTestSuite) TestMarkRead_NotFound() {
	err := s.notifications.MarkRead(context.Background(), 9999)
	s.True(apperr.IsNotFound(err))
}

func (s *ServicesIntegrationTestSuite) TestDeleteNotification() {
	owner := s.createUser("owner")
	parcel := s.createParcel(owner.ID, "")
	notification, err := s.notifications.Create(context.Background(), owner.ID, parcel.ID, "message")
	s.Require().NoError(err)

	s.Require().NoError(s.notifications.Delete(context.Background(), notification.ID))

	err = s.notifications.Delete(context.Background(), notification.ID)
	s.True(apperr.IsNotFound(err))
}

func (s *ServicesIntegrationTestSuite) TestListForUser_NewestFirst() {
	owner := s.createUser("owner")
	parcel := s.createParcel(owner.ID, "")

	_, err := s.notifications.Create(context.Background(), owner.ID, parcel.ID, "older")
	s.Require().NoError(err)
	time.Sleep(10 * time.Millisecond)
	_, err = s.notifications.Create(context.Background(), owner.ID, parcel.ID, "newer")
	s.Require().NoError(err)

	list, err := s.notifications.ListForUser(context.Background(), owner.ID)
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(len(list), 2)
	s.Equal("newer", list[0].Message)
}
