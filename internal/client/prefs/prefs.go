package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/alshehri12/grc/internal/client/storage"
	"github.com/alshehri12/grc/internal/models"
)

// Ключи настроек интерфейса в локальном хранилище
const (
	KeyLocale              = "locale"
	KeyDarkMode            = "darkMode"
	KeyCurrentOrganization = "currentOrganization"
)

const (
	DefaultLocale = "en"
	LocaleArabic  = "ar"

	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// Store хранит настройки интерфейса рядом с токенами.
// Состояние боковой панели живет только в памяти процесса.
type Store struct {
	kv               storage.KVStorage
	logger           *slog.Logger
	mu               sync.Mutex
	sidebarCollapsed bool
}

func New(kv storage.KVStorage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Locale возвращает выбранный язык, по умолчанию "en"
func (s *Store) Locale(ctx context.Context) string {
	if locale, ok := s.get(ctx, KeyLocale); ok && locale != "" {
		return locale
	}
	return DefaultLocale
}

func (s *Store) SetLocale(ctx context.Context, locale string) error {
	if locale == "" {
		return fmt.Errorf("locale cannot be empty")
	}
	return s.set(ctx, KeyLocale, locale)
}

// IsRTL сообщает, пишется ли выбранный язык справа налево
func (s *Store) IsRTL(ctx context.Context) bool {
	return s.Locale(ctx) == LocaleArabic
}

// Direction возвращает "rtl" для арабского и "ltr" для остальных языков
func (s *Store) Direction(ctx context.Context) string {
	if s.IsRTL(ctx) {
		return DirectionRTL
	}
	return DirectionLTR
}

// DarkMode включен только при сохраненном значении "true"
func (s *Store) DarkMode(ctx context.Context) bool {
	value, _ := s.get(ctx, KeyDarkMode)
	return value == "true"
}

func (s *Store) SetDarkMode(ctx context.Context, enabled bool) error {
	return s.set(ctx, KeyDarkMode, strconv.FormatBool(enabled))
}

// ToggleDarkMode переключает тему и возвращает новое значение
func (s *Store) ToggleDarkMode(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled := !s.DarkMode(ctx)
	if err := s.set(ctx, KeyDarkMode, strconv.FormatBool(enabled)); err != nil {
		return !enabled, err
	}
	return enabled, nil
}

// CurrentOrganization возвращает выбранную организацию или nil
func (s *Store) CurrentOrganization(ctx context.Context) (*models.Organization, error) {
	raw, ok := s.get(ctx, KeyCurrentOrganization)
	if !ok || raw == "" {
		return nil, nil
	}

	var org models.Organization
	if err := json.Unmarshal([]byte(raw), &org); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", KeyCurrentOrganization, err)
	}
	return &org, nil
}

// SetOrganization сохраняет организацию; nil удаляет выбор
func (s *Store) SetOrganization(ctx context.Context, org *models.Organization) error {
	if org == nil {
		return s.delete(ctx, KeyCurrentOrganization)
	}
	data, err := json.Marshal(org)
	if err != nil {
		return fmt.Errorf("failed to encode organization: %w", err)
	}
	return s.set(ctx, KeyCurrentOrganization, string(data))
}

// SetOrganizationJSON сохраняет объект организации в том виде, в каком его вернул сервер
func (s *Store) SetOrganizationJSON(ctx context.Context, raw json.RawMessage) error {
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return fmt.Errorf("invalid organization JSON: %w", err)
	}
	if compact.String() == "null" {
		return s.delete(ctx, KeyCurrentOrganization)
	}
	if compact.Len() == 0 || compact.Bytes()[0] != '{' {
		return fmt.Errorf("invalid organization JSON: object expected")
	}
	return s.set(ctx, KeyCurrentOrganization, compact.String())
}

// ToggleSidebar переключает свернутость боковой панели
func (s *Store) ToggleSidebar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebarCollapsed = !s.sidebarCollapsed
	return s.sidebarCollapsed
}

func (s *Store) SidebarCollapsed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidebarCollapsed
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	value, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.logger.WarnContext(ctx, "failed to read preference", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (s *Store) set(ctx context.Context, key, value string) error {
	if err := s.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
