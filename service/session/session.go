package session

import (
	"context"
	"errors"
	"time"

	"lending/core"

	"github.com/asaskevich/govalidator"
	"github.com/bluele/gcache"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt"
	"golang.org/x/sync/singleflight"
)

var (
	errInvalidIssuer  = errors.New("invalid issuer")
	errInvalidSubject = errors.New("invalid subject")
)

// New new session
func New(cfg core.Auth) core.Session {
	var s core.Session = &session{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		sf:     &singleflight.Group{},
	}

	if cfg.CacheSize > 0 {
		s = &cacheSession{
			Session: s,
			tokens:  gcache.New(cfg.CacheSize).LRU().Build(),
		}
	}

	return s
}

type session struct {
	secret []byte
	issuer string
	sf     *singleflight.Group
}

func (s *session) Login(ctx context.Context, accessToken string) (string, error) {
	owner, err, _ := s.sf.Do(accessToken, func() (interface{}, error) {
		var claim jwt.StandardClaims
		if _, err := jwt.ParseWithClaims(accessToken, &claim, s.key); err != nil {
			return nil, err
		}

		if s.issuer != "" && claim.Issuer != s.issuer {
			return nil, errInvalidIssuer
		}

		if !govalidator.IsUUID(claim.Subject) {
			return nil, errInvalidSubject
		}

		return claim.Subject, nil
	})

	if err != nil {
		return "", err
	}

	return owner.(string), nil
}

func (s *session) key(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}

	return s.secret, nil
}

type cacheSession struct {
	core.Session
	tokens gcache.Cache
}

func (s *cacheSession) Login(ctx context.Context, accessToken string) (string, error) {
	if v, err := s.tokens.Get(accessToken); err == nil {
		return v.(string), nil
	}

	owner, err := s.Session.Login(ctx, accessToken)
	if err != nil {
		return "", err
	}

	_ = s.tokens.SetWithExpire(accessToken, owner, time.Minute)
	return owner, nil
}

// Issue sign an access token for owner
func Issue(cfg core.Auth, owner string, ttl time.Duration) (string, error) {
	if !govalidator.IsUUID(owner) {
		return "", errInvalidSubject
	}

	now := time.Now()
	claim := jwt.StandardClaims{
		Id:        uuid.Must(uuid.NewV4()).String(),
		Subject:   owner,
		Issuer:    cfg.Issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claim).SignedString([]byte(cfg.Secret))
}
