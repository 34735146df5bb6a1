package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/DarmokhvalViktor/test-task-cs/internal/domain/entity"
	repo "github.com/DarmokhvalViktor/test-task-cs/internal/domain/repository"
	"github.com/DarmokhvalViktor/test-task-cs/internal/domain/rules"
	"github.com/DarmokhvalViktor/test-task-cs/pkg/helpers"
	"github.com/DarmokhvalViktor/test-task-cs/pkg/mailer"
)

// Service orchestrates the user repository and the domain rules. Each write
// operation runs its read-check-write sequence inside a single repository
// transaction; the welcome-email queue and the search index are updated only
// after the transaction commits, best effort.
type Service struct {
	Repo         repo.UserRepository
	RequiredAge  int
	Logger       *logrus.Logger
	Queue        *helpers.RabbitPublisher
	ES           *elasticsearch.Client
	ESUsersIndex string

	// Now supplies the current time for age checks; tests may override it.
	Now func() time.Time
}

func NewService(r repo.UserRepository, requiredAge int, logger *logrus.Logger, queue *helpers.RabbitPublisher, es *elasticsearch.Client, esUsersIndex string) *Service {
	return &Service{
		Repo:         r,
		RequiredAge:  requiredAge,
		Logger:       logger,
		Queue:        queue,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Now:          time.Now,
	}
}

// FindUsersByBirthDateRange returns users born within [from, to] inclusive.
// The range is validated before any store access.
func (s *Service) FindUsersByBirthDateRange(ctx context.Context, from, to time.Time) ([]UserDTO, error) {
	if err := rules.ValidateDateRange(from, to); err != nil {
		return nil, err
	}
	users, err := s.Repo.FindByBirthDateBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, entityToDTO(u))
	}
	return out, nil
}

// CreateUser registers a new user. The birth date must satisfy the required
// age and the email must not be taken by anyone.
func (s *Service) CreateUser(ctx context.Context, dto UserDTO) (*UserDTO, error) {
	if !rules.IsAgeValid(dto.BirthDate.Time, s.RequiredAge, s.Now()) {
		return nil, &TooYoungError{RequiredAge: s.RequiredAge, Action: "register"}
	}

	var created *entity.User
	err := s.Repo.InTx(ctx, func(r repo.UserRepository) error {
		if err := checkEmailNotUsedByOther(ctx, r, dto.Email, 0); err != nil {
			return err
		}
		u := dtoToEntity(dto)
		if err := r.Create(ctx, u); err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishWelcomeEmail(ctx, created)
	_ = s.indexUser(ctx, created)

	out := entityToDTO(created)
	return &out, nil
}

// UpdateUser replaces every mutable field of an existing user. Full updates
// do not re-check the required age when the birth date changes; only patches
// do.
func (s *Service) UpdateUser(ctx context.Context, dto UserDTO, id int64) (*UserDTO, error) {
	var updated *entity.User
	err := s.Repo.InTx(ctx, func(r repo.UserRepository) error {
		existing, err := r.FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		if err != nil {
			return err
		}
		if err := checkEmailNotUsedByOther(ctx, r, dto.Email, id); err != nil {
			return err
		}

		existing.FirstName = dto.FirstName
		existing.LastName = dto.LastName
		existing.BirthDate = dto.BirthDate.Time
		existing.Email = dto.Email
		existing.Address = dto.Address
		existing.PhoneNumber = dto.PhoneNumber

		if err := r.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.indexUser(ctx, updated)

	out := entityToDTO(updated)
	return &out, nil
}

// PatchUser merges only the supplied fields into an existing user. A supplied
// birth date is re-validated against the required age before any field is
// written, so a failed patch leaves the record untouched.
func (s *Service) PatchUser(ctx context.Context, dto PartialUserDTO, id int64) (*UserDTO, error) {
	var updated *entity.User
	err := s.Repo.InTx(ctx, func(r repo.UserRepository) error {
		existing, err := r.FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		if err != nil {
			return err
		}
		if dto.Email != nil {
			if err := checkEmailNotUsedByOther(ctx, r, *dto.Email, id); err != nil {
				return err
			}
		}
		if dto.BirthDate != nil {
			if !rules.IsAgeValid(dto.BirthDate.Time, s.RequiredAge, s.Now()) {
				return &TooYoungError{RequiredAge: s.RequiredAge, Action: "use this site"}
			}
			existing.BirthDate = dto.BirthDate.Time
		}
		if dto.FirstName != nil {
			existing.FirstName = *dto.FirstName
		}
		if dto.LastName != nil {
			existing.LastName = *dto.LastName
		}
		if dto.Email != nil {
			existing.Email = *dto.Email
		}
		if dto.Address != nil {
			existing.Address = *dto.Address
		}
		if dto.PhoneNumber != nil {
			existing.PhoneNumber = *dto.PhoneNumber
		}

		if err := r.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.indexUser(ctx, updated)

	out := entityToDTO(updated)
	return &out, nil
}

// DeleteUser removes a user permanently and returns a confirmation message.
func (s *Service) DeleteUser(ctx context.Context, id int64) (string, error) {
	err := s.Repo.InTx(ctx, func(r repo.UserRepository) error {
		if _, err := r.FindByID(ctx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return &NotFoundError{ID: id}
			}
			return err
		}
		return r.DeleteByID(ctx, id)
	})
	if err != nil {
		return "", err
	}

	s.removeUserDoc(ctx, id)

	return fmt.Sprintf("User with ID %d was deleted", id), nil
}

// checkEmailNotUsedByOther looks up the owner of email and fails only when an
// owner exists and is not the user identified by currentID. currentID 0 means
// "no current user" (creation), so any owner is a conflict.
func checkEmailNotUsedByOther(ctx context.Context, r repo.UserRepository, email string, currentID int64) error {
	owner, err := r.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if currentID == 0 || owner.ID != currentID {
		return &EmailTakenError{Email: email}
	}
	return nil
}

func (s *Service) publishWelcomeEmail(ctx context.Context, u *entity.User) {
	if s.Queue == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: "welcome",
		Data: map[string]any{
			"FirstName": u.FirstName,
			"LastName":  u.LastName,
		},
	}
	if err := s.Queue.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email publish failed")
	}
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":           u.ID,
		"first_name":   u.FirstName,
		"last_name":    u.LastName,
		"email":        u.Email,
		"birth_date":   u.BirthDate.Format(DateLayout),
		"address":      u.Address,
		"phone_number": u.PhoneNumber,
		"updated_at":   u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: strconv.FormatInt(u.ID, 10), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

func (s *Service) removeUserDoc(ctx context.Context, id int64) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchUsers performs a simple multi_match search on email and names.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
