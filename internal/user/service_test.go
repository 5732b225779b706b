package user

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcatalog/internal/book"
	"bookcatalog/internal/platform/crypto"
	"bookcatalog/internal/store"
	"bookcatalog/internal/validation"
)

const password = "Watchm3n!"

func fixedClock() time.Time { return today }

func validProfile() Profile {
	u := validUser()
	return Profile{Username: u.Username, Name: u.Name, Birthdate: u.Birthdate}
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo, NewMockBookFinder(ctrl)).WithClock(fixedClock)
	ctx := context.Background()

	t.Run("password is stored hashed", func(t *testing.T) {
		mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *User) error {
			assert.NotEqual(t, password, u.PasswordHash)
			assert.True(t, crypto.VerifyPassword(u.PasswordHash, password))
			u.ID = "u1"
			return nil
		})

		got, err := service.Create(ctx, validProfile(), password)
		require.NoError(t, err)
		assert.Equal(t, "u1", got.ID)
		assert.Empty(t, got.Books())
	})

	t.Run("profile and password failures reported together", func(t *testing.T) {
		p := validProfile()
		p.Birthdate = today.AddDate(0, 0, 1)

		_, err := service.Create(ctx, p, "weak")
		details, ok := validation.Details(err)
		require.True(t, ok)
		require.Len(t, details, 2)
		assert.Equal(t, "birthdate", details[0].Field)
		assert.Equal(t, "password", details[1].Field)
		assert.Equal(t, "The password must be at least 8 characters", details[1].Reason)
	})

	t.Run("taken username", func(t *testing.T) {
		mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(store.ErrIntegrityViolation)
		_, err := service.Create(ctx, validProfile(), password)
		assert.ErrorIs(t, err, store.ErrIntegrityViolation)
	})
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo, NewMockBookFinder(ctrl)).WithClock(fixedClock)
	ctx := context.Background()

	stored := validUser()
	stored.ID = "u1"
	stored.PasswordHash = "hash"
	require.NoError(t, stored.AddBook(watchmen))

	t.Run("id mismatch", func(t *testing.T) {
		p := validProfile()
		p.ID = "u2"
		_, err := service.Update(ctx, "u1", p)
		assert.ErrorIs(t, err, ErrIDMismatch)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo.EXPECT().FindByID(gomock.Any(), "u1").Return(User{}, ErrNotFound)
		_, err := service.Update(ctx, "u1", validProfile())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("keeps password and books", func(t *testing.T) {
		p := validProfile()
		p.Name = "Alan Oswald Moore"
		mockRepo.EXPECT().FindByID(gomock.Any(), "u1").Return(stored, nil)
		mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *User) error {
			assert.Equal(t, "u1", u.ID)
			assert.Equal(t, "hash", u.PasswordHash)
			assert.Equal(t, []string{"b1"}, ids(u.Books()))
			return nil
		})

		got, err := service.Update(ctx, "u1", p)
		require.NoError(t, err)
		assert.Equal(t, "Alan Oswald Moore", got.Name)
	})

	t.Run("invalid profile", func(t *testing.T) {
		p := validProfile()
		p.Name = " "
		mockRepo.EXPECT().FindByID(gomock.Any(), "u1").Return(stored, nil)
		_, err := service.Update(ctx, "u1", p)
		_, ok := validation.Details(err)
		assert.True(t, ok)
	})
}

func TestService_UpdatePassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo, NewMockBookFinder(ctrl))
	ctx := context.Background()

	t.Run("weak password", func(t *testing.T) {
		err := service.UpdatePassword(ctx, "u1", "alllowercase1!")
		details, ok := validation.Details(err)
		require.True(t, ok)
		assert.Equal(t, "The password must contain at least one uppercase letter", details[0].Reason)
	})

	t.Run("rehashes", func(t *testing.T) {
		mockRepo.EXPECT().FindByID(gomock.Any(), "u1").Return(User{ID: "u1", PasswordHash: "old"}, nil)
		mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *User) error {
			assert.True(t, crypto.VerifyPassword(u.PasswordHash, password))
			return nil
		})
		assert.NoError(t, service.UpdatePassword(ctx, "u1", password))
	})
}

func TestService_Authenticate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo, NewMockBookFinder(ctrl))
	ctx := context.Background()

	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)
	mockRepo.EXPECT().FindByUsername(gomock.Any(), "alan").Return(User{ID: "u1", PasswordHash: hash}, nil).Times(2)

	u, ok, err := service.Authenticate(ctx, "alan", password)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", u.ID)

	_, ok, err = service.Authenticate(ctx, "alan", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Authenticate_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo, NewMockBookFinder(ctrl))

	mockRepo.EXPECT().FindByUsername(gomock.Any(), "nobody").Return(User{}, ErrNotFound)

	start := time.Now()
	_, ok, err := service.Authenticate(context.Background(), "nobody", password)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, ok)
	// a bcrypt comparison still ran
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestService_AddBook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	mockBooks := NewMockBookFinder(ctrl)
	service := NewService(mockRepo, mockBooks)
	ctx := context.Background()

	t.Run("adds one row", func(t *testing.T) {
		mockRepo.EXPECT().FindByID(gomock.Any(), "u1").Return(User{ID: "u1"}, nil)
		mockBooks.EXPECT().FindByID(gomock.Any(), "b1").Return(watchmen, nil)
		mockRepo.EXPECT().AddBook(gomock.Any(), "u1", "b1").Return(nil)

		got, err := service.AddBook(ctx, "u1", "b1")
		require.NoError(t, err)
		assert.Equal(t, []string{"b1"}, ids(got.Books()))
	})

	t.Run("already owned is not saved", func(t *testing.T) {
		owner := User{ID: "u1"}
		require.NoError(t, owner.AddBook(watchmen))
		mockRepo.EXPECT().FindByID(gomock.Any(), "u1").Return(owner, nil)
		mockBooks.EXPECT().FindByID(gomock.Any(), "b1").Return(watchmen, nil)

		_, err := service.AddBook(ctx, "u1", "b1")
		assert.ErrorIs(t, err, ErrBookAlreadyOwned)
	})

	t.Run("added meanwhile by another request", func(t *testing.T) {
		mockRepo.EXPECT().FindByID(gomock.Any(), "u1").Return(User{ID: "u1"}, nil)
		mockBooks.EXPECT().FindByID(gomock.Any(), "b1").Return(watchmen, nil)
		mockRepo.EXPECT().AddBook(gomock.Any(), "u1", "b1").Return(ErrBookAlreadyOwned)

		_, err := service.AddBook(ctx, "u1", "b1")
		assert.ErrorIs(t, err, ErrBookAlreadyOwned)
	})

	t.Run("book not in catalog", func(t *testing.T) {
		mockRepo.EXPECT().FindByID(gomock.Any(), "u1").Return(User{ID: "u1"}, nil)
		mockBooks.EXPECT().FindByID(gomock.Any(), "nope").Return(book.Book{}, book.ErrNotFound)

		_, err := service.AddBook(ctx, "u1", "nope")
		assert.ErrorIs(t, err, book.ErrNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo.EXPECT().FindByID(gomock.Any(), "u9").Return(User{}, ErrNotFound)
		_, err := service.AddBook(ctx, "u9", "b1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_RemoveBook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	mockBooks := NewMockBookFinder(ctrl)
	service := NewService(mockRepo, mockBooks)
	ctx := context.Background()

	t.Run("not owned", func(t *testing.T) {
		mockRepo.EXPECT().FindByID(gomock.Any(), "u1").Return(User{ID: "u1"}, nil)
		mockBooks.EXPECT().FindByID(gomock.Any(), "b1").Return(watchmen, nil)

		_, err := service.RemoveBook(ctx, "u1", "b1")
		assert.ErrorIs(t, err, ErrBookNotOwned)
	})

	t.Run("removes one row", func(t *testing.T) {
		owner := User{ID: "u1"}
		require.NoError(t, owner.AddBook(watchmen))
		require.NoError(t, owner.AddBook(fromHell))
		mockRepo.EXPECT().FindByID(gomock.Any(), "u1").Return(owner, nil)
		mockBooks.EXPECT().FindByID(gomock.Any(), "b1").Return(watchmen, nil)
		mockRepo.EXPECT().RemoveBook(gomock.Any(), "u1", "b1").Return(nil)

		got, err := service.RemoveBook(ctx, "u1", "b1")
		require.NoError(t, err)
		assert.Equal(t, []string{"b2"}, ids(got.Books()))
	})
}
