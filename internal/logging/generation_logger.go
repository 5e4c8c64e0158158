package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// GenerationLogger manages the log file for a single generation
// invocation. Every prompt, response, retry and error of the invocation
// lands in one file under generation_logs/ for later inspection.
type GenerationLogger struct {
	generationID string
	logFile      *os.File
	mutex        sync.Mutex
	startTime    time.Time
}

var (
	currentLogger *GenerationLogger
	loggerMutex   sync.Mutex
)

// StartGenerationLogging initializes logging for a new generation
// invocation and makes it the current logger.
func StartGenerationLogging(generationID string) (*GenerationLogger, error) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if currentLogger != nil {
		currentLogger.Close()
	}

	timestamp := time.Now().Format("20060102_150405")
	logFileName := fmt.Sprintf("generation_%s_%s.log", generationID, timestamp)
	logPath := filepath.Join("generation_logs", logFileName)

	if err := os.MkdirAll("generation_logs", 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &GenerationLogger{
		generationID: generationID,
		logFile:      logFile,
		startTime:    time.Now(),
	}

	currentLogger = logger
	logger.writeHeader()

	return logger, nil
}

// GetCurrentLogger returns the current active logger, which may be nil.
func GetCurrentLogger() *GenerationLogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	return currentLogger
}

// Log writes a message to the generation log.
func (g *GenerationLogger) Log(format string, args ...interface{}) {
	if g == nil {
		return
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	elapsed := time.Since(g.startTime)
	logMessage := fmt.Sprintf(format, args...)

	message := fmt.Sprintf("[%s] [+%v] %s\n", timestamp, elapsed.Round(time.Millisecond), logMessage)
	g.logFile.WriteString(message)
	g.logFile.Sync()
}

// LogSection writes a section header to the log.
func (g *GenerationLogger) LogSection(title string) {
	if g == nil {
		return
	}

	separator := strings.Repeat("=", 80)
	g.Log(separator)
	g.Log("= %s", title)
	g.Log(separator)
}

// LogRequest logs a remote generation request.
func (g *GenerationLogger) LogRequest(unitLabel, prompt string) {
	if g == nil {
		return
	}

	g.LogSection(fmt.Sprintf("GENERATION REQUEST - %s", unitLabel))
	g.Log("Prompt length: %d characters", len(prompt))
	g.Log("--- PROMPT START ---")
	g.logFile.WriteString(prompt + "\n")
	g.Log("--- PROMPT END ---")
}

// LogResponse logs a raw model response.
func (g *GenerationLogger) LogResponse(unitLabel, response string) {
	if g == nil {
		return
	}

	g.LogSection(fmt.Sprintf("GENERATION RESPONSE - %s", unitLabel))
	g.Log("Response length: %d characters", len(response))
	g.Log("--- RESPONSE START ---")
	g.logFile.WriteString(response + "\n")
	g.Log("--- RESPONSE END ---")
}

// LogError logs an error with its context.
func (g *GenerationLogger) LogError(context string, err error) {
	if g == nil {
		return
	}

	g.Log("ERROR in %s: %v", context, err)
}

// Close finalizes the log file.
func (g *GenerationLogger) Close() {
	if g == nil {
		return
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.logFile != nil {
		timestamp := time.Now().Format("15:04:05.000")
		elapsed := time.Since(g.startTime)
		finalMessage := fmt.Sprintf("[%s] [+%v] Generation logging completed. Total duration: %v\n",
			timestamp, elapsed.Round(time.Millisecond), elapsed)
		g.logFile.WriteString(finalMessage)
		g.logFile.Sync()

		g.logFile.Close()
		g.logFile = nil
	}
}

func (g *GenerationLogger) writeHeader() {
	header := fmt.Sprintf(`FORMSHIFT GENERATION LOG
Generation ID: %s
Start Time: %s
Log Format: [HH:MM:SS.mmm] [+duration] message

`, g.generationID, g.startTime.Format("2006-01-02 15:04:05"))

	g.logFile.WriteString(header)
	g.logFile.Sync()
}
