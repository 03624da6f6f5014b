package service

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"parley.app/server/common/llm"
	"parley.app/server/core/config"
	"parley.app/server/internal/store"
)

type ServicesConfig struct {
	Stores      *store.Stores
	TxRunner    TxRunner
	Completions llm.Client
	Redis       *redis.Client
	WorkOS      config.WorkOSConfig
	Weather     config.WeatherConfig
	News        config.NewsConfig
	GuestTTL    time.Duration
}

type Services struct {
	cfg ServicesConfig
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{cfg: cfg}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.cfg.Stores.Users(), s.cfg.Stores.Sessions(), s.cfg.WorkOS)
}

func (s *Services) Guests() GuestService {
	return NewGuestService(s.cfg.Redis, s.cfg.GuestTTL)
}

func (s *Services) Chat() ChatService {
	return NewChatService(s.cfg.Stores.Messages(), s.cfg.Stores.Conversations(), s.cfg.Completions)
}

func (s *Services) Conversations() ConversationService {
	return NewConversationService(s.cfg.Stores.Messages(), s.cfg.Stores.Conversations(), s.cfg.TxRunner)
}

func (s *Services) Admin() AdminService {
	return NewAdminService(s.cfg.Stores.Users(), s.cfg.Stores.Messages())
}

func (s *Services) Proxy() ProxyService {
	return NewProxyService(&http.Client{Timeout: 15 * time.Second}, s.cfg.Weather, s.cfg.News)
}
