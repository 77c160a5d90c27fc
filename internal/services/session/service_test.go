package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Levii22/planning-poker/internal/dependencies/mocks"
	"github.com/Levii22/planning-poker/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.clock, DefaultConfig(), testutil.NopLogger())
}

func (s *ServiceSuite) TestIssueReturnsUnguessableTokens() {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := s.service.Issue("p1", "AB12", "Ann")
		s.True(strings.HasPrefix(token, "sess_"))
		// 16 random bytes base64-encoded
		s.Len(token, len("sess_")+22)
		s.False(seen[token], "tokens must never repeat")
		seen[token] = true
	}
	s.Equal(100, s.service.Count())
}

func (s *ServiceSuite) TestSweepRemovesOnlyExpiredEntries() {
	s.service.Issue("p1", "AB12", "Ann")
	s.service.Issue("p2", "AB12", "Bob")

	s.clock.Advance(20 * time.Minute)
	s.service.Issue("p3", "CD34", "Cat")

	s.clock.Advance(15 * time.Minute)

	// First two entries are now 35 minutes old, the third 15
	removed := s.service.Sweep()
	s.Equal(2, removed)
	s.Equal(1, s.service.Count())
}

func (s *ServiceSuite) TestSweepIsIdempotent() {
	s.service.Issue("p1", "AB12", "Ann")
	s.clock.Advance(31 * time.Minute)

	s.Equal(1, s.service.Sweep())
	s.Equal(0, s.service.Sweep())
	s.Equal(0, s.service.Count())
}

func (s *ServiceSuite) TestEntriesSurviveExactlyTheTTL() {
	s.service.Issue("p1", "AB12", "Ann")

	s.clock.Advance(30 * time.Minute)
	s.Equal(0, s.service.Sweep(), "age equal to TTL does not expire")

	s.clock.Advance(time.Second)
	s.Equal(1, s.service.Sweep())
}

func (s *ServiceSuite) TestEntriesExpireRegardlessOfUse() {
	// Issuing more tokens for the same player does not refresh old ones
	s.service.Issue("p1", "AB12", "Ann")
	s.clock.Advance(25 * time.Minute)
	s.service.Issue("p1", "AB12", "Ann")
	s.clock.Advance(10 * time.Minute)

	s.Equal(1, s.service.Sweep())
	s.Equal(1, s.service.Count())
}
