package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

// LoggerTestSuite tests the log package
type LoggerTestSuite struct {
	suite.Suite
	originalLogger zerolog.Logger
	testOutput     *bytes.Buffer
}

// SetupTest installs a JSON logger writing into a buffer
func (s *LoggerTestSuite) SetupTest() {
	s.originalLogger = Logger
	s.testOutput = &bytes.Buffer{}
	s.Require().NoError(Configure(Options{Level: "debug", JSON: true, Writer: s.testOutput}))
}

// TearDownTest restores the original logger
func (s *LoggerTestSuite) TearDownTest() {
	Logger = s.originalLogger
}

func (s *LoggerTestSuite) lastEntry() map[string]any {
	lines := strings.Split(strings.TrimSpace(s.testOutput.String()), "\n")
	s.Require().NotEmpty(lines)

	entry := map[string]any{}
	s.Require().NoError(json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

// TestLevels tests that each helper emits at its level
func (s *LoggerTestSuite) TestLevels() {
	testCases := []struct {
		emit  func() *zerolog.Event
		level string
	}{
		{Debug, "debug"},
		{Info, "info"},
		{Warn, "warn"},
		{Error, "error"},
	}

	for _, tc := range testCases {
		tc.emit().Msg("level " + tc.level)
		entry := s.lastEntry()
		s.Equal(tc.level, entry["level"])
		s.Equal("level "+tc.level, entry["message"])
	}
}

// TestLogWithFields tests logging with additional fields
func (s *LoggerTestSuite) TestLogWithFields() {
	Info().Str("path", "files/a/b/c").Int64("file_id", 7).Msg("cataloged")

	entry := s.lastEntry()
	s.Equal("files/a/b/c", entry["path"])
	s.InDelta(7, entry["file_id"], 0)
	s.Contains(entry, "time")
}

// TestGoroutineID tests the goroutine tag on every event
func (s *LoggerTestSuite) TestGoroutineID() {
	id := goroutineID()
	s.NotEqual("unknown", id)
	for _, char := range id {
		s.True(char >= '0' && char <= '9', "goroutine id should be numeric")
	}

	Info().Msg("tagged")
	s.Equal(id, s.lastEntry()["goid"])

	done := make(chan string)
	go func() { done <- goroutineID() }()
	s.NotEqual(id, <-done)
}

// TestComponent tests component tagging
func (s *LoggerTestSuite) TestComponent() {
	logger := Component("catalog")
	logger.Info().Msg("hello")

	s.Equal("catalog", s.lastEntry()["component"])
}

// TestLevelFiltering tests that events below the configured level are dropped
func (s *LoggerTestSuite) TestLevelFiltering() {
	s.Require().NoError(Configure(Options{Level: "warn", JSON: true, Writer: s.testOutput}))

	Info().Msg("should not appear")
	Warn().Msg("should appear")

	output := s.testOutput.String()
	s.NotContains(output, "should not appear")
	s.Contains(output, "should appear")
}

// TestConfigureInvalidLevel tests that an unknown level is rejected
func (s *LoggerTestSuite) TestConfigureInvalidLevel() {
	err := Configure(Options{Level: "loud"})
	s.Error(err)
	s.Contains(err.Error(), "loud")
}

// TestSetDebugMode tests switching to debug level
func (s *LoggerTestSuite) TestSetDebugMode() {
	s.Require().NoError(Configure(Options{Level: "error", JSON: true, Writer: s.testOutput}))
	SetDebugMode()

	s.Equal(zerolog.DebugLevel, Logger.GetLevel())
	Debug().Msg("now visible")
	s.Contains(s.testOutput.String(), "now visible")
}

// TestConsoleWriter tests the default console output
func (s *LoggerTestSuite) TestConsoleWriter() {
	buf := &bytes.Buffer{}
	logger := New(Options{Writer: buf})
	logger.Info().Str("name", "calib.dat").Msg("console message")

	s.Contains(buf.String(), "console message")
	s.Contains(buf.String(), "calib.dat")
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}
