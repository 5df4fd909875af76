package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"chyrp/internal/domain"
)

const (
	minPasswordLen = 6
	minLoginLen    = 3
	adminLogin     = "admin"
	adminEmail     = "admin@example.com"
)

var (
	emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	loginRegexp = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

type userService struct {
	userRepo       domain.UserRepository
	groupRepo      domain.GroupRepository
	postRepo       domain.PostRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repositories and auth ports.
func NewUserService(userRepo domain.UserRepository,
	groupRepo domain.GroupRepository,
	postRepo domain.PostRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	logger *slog.Logger,
	timeout time.Duration,
) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		groupRepo:      groupRepo,
		postRepo:       postRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *userService) Signup(ctx context.Context, in domain.SignupInput) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	login := strings.ToLower(strings.TrimSpace(in.Login))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if len(login) < minLoginLen || !loginRegexp.MatchString(login) {
		return nil, fmt.Errorf("%w: login must be at least %d characters of letters, numbers, hyphens and underscores", domain.ErrInvalidInput, minLoginLen)
	}
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if _, err := s.userRepo.GetByLogin(ctx, login); err == nil {
		return nil, fmt.Errorf("%w: login already taken", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check login: %w", err)
	}

	group, err := s.groupRepo.GetByName(ctx, domain.GroupMember)
	if err != nil {
		return nil, fmt.Errorf("get group %q: %w", domain.GroupMember, err)
	}
	user, err := s.newUser(login, email, in.Password, strings.TrimSpace(in.FullName), group)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) newUser(login, email, password, fullName string, group *domain.Group) (*domain.User, error) {
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		Login:          login,
		Email:          email,
		FullName:       fullName,
		HashedPassword: hash,
		Salt:           salt,
		IsActive:       true,
		GroupID:        group.ID,
		Group:          group,
		JoinedAt:       time.Now().UTC(),
	}, nil
}

func (s *userService) Login(ctx context.Context, loginOrEmail, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	id := strings.ToLower(strings.TrimSpace(loginOrEmail))
	var (
		user *domain.User
		err  error
	)
	if strings.Contains(id, "@") {
		user, err = s.userRepo.GetByEmail(ctx, id)
	} else {
		user, err = s.userRepo.GetByLogin(ctx, id)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.HashedPassword, user.Salt, password); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("%w: account is disabled", domain.ErrForbidden)
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Login, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) CreateGroup(ctx context.Context, name string, perms []domain.Permission) (*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", domain.ErrInvalidInput)
	}
	if perms == nil {
		perms = []domain.Permission{}
	}
	group := &domain.Group{Name: name, Permissions: perms}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: group %q already exists", domain.ErrConflict, name)
		}
		return nil, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}

func (s *userService) ListGroups(ctx context.Context, p domain.PaginationParams) ([]*domain.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	groups, err := s.groupRepo.List(ctx, p.Clamp(defaultListLimit, maxListLimit))
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (s *userService) Seed(ctx context.Context, adminPassword string) error {
	n, err := s.groupRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count groups: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "database already seeded, skipping")
		return nil
	}

	admin := &domain.Group{Name: domain.GroupAdmin, Permissions: domain.AdminPermissions}
	if err := s.groupRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin group: %w", err)
	}
	member := &domain.Group{Name: domain.GroupMember, Permissions: domain.MemberPermissions}
	if err := s.groupRepo.Create(ctx, member); err != nil {
		return fmt.Errorf("create member group: %w", err)
	}

	user, err := s.newUser(adminLogin, adminEmail, adminPassword, "Administrator", admin)
	if err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	now := time.Now().UTC()
	pages := []*domain.Post{
		{Clean: "about-us", Title: "About Us", Body: "## Welcome!\n\nThis is the default 'About Us' page."},
		{Clean: "contact", Title: "Contact", Body: "This is the default 'Contact' page."},
	}
	for _, p := range pages {
		p.ContentType = domain.ContentTypePage
		p.Status = domain.PostStatusPublic
		p.UserID = user.ID
		p.CreatedAt, p.UpdatedAt = now, now
		if err := s.postRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("create page %q: %w", p.Clean, err)
		}
	}
	s.logger.InfoContext(ctx, "seeded initial data", "admin_login", adminLogin)
	return nil
}
