/*
 * Copyright 2023 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger       *zap.Logger
	atomicLevel  = zap.NewAtomicLevel()
	registerOnce sync.Once
	registerErr  error
)

// LoggerConfig selects where logs are written in addition to stdout
type LoggerConfig struct {
	LogLevel       string
	LogMethod      string
	LogFile        LogFile
	VectorEndpoint string
}

// LogFile holds the rotation settings used when LogMethod is file
type LogFile struct {
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

type lumberjackSink struct {
	*lumberjack.Logger
}

func (lumberjackSink) Sync() error {
	return nil
}

// Initialize builds the global zap logger. Every entry carries the app and host fields.
func Initialize(svc, hostname string, cfg LoggerConfig) error {
	atomicLevel.SetLevel(parseLevel(cfg.LogLevel))

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewJSONEncoder(ProdEncoderConf()),
			zapcore.Lock(os.Stdout),
			atomicLevel,
		),
	}

	switch cfg.LogMethod {
	case "":
	case "file":
		ljWriteSyncer := zapcore.AddSync(lumberjackSink{&lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogFile.Path, svc+".log"),
			MaxSize:    cfg.LogFile.MaxSize, // megabytes
			MaxBackups: cfg.LogFile.MaxBackups,
			MaxAge:     cfg.LogFile.MaxAge, // days
		}})
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(ProdEncoderConf()),
			ljWriteSyncer,
			atomicLevel))
	case "vector":
		u, err := url.Parse(cfg.VectorEndpoint)
		if err != nil {
			return fmt.Errorf("invalid vector endpoint %q: %w", cfg.VectorEndpoint, err)
		}

		registerOnce.Do(func() {
			registerErr = zap.RegisterSink("vector", initVectorSink)
		})
		if registerErr != nil {
			return registerErr
		}

		// zap picks the sink factory by url scheme
		vectorScheme = u.Scheme
		sinkURL := *u
		sinkURL.Scheme = "vector"
		ws, _, err := zap.Open(sinkURL.String())
		if err != nil {
			return err
		}

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(ProdEncoderConf()),
			ws,
			atomicLevel))
	default:
		return fmt.Errorf("unknown log method %q", cfg.LogMethod)
	}

	logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(),
		zap.Fields(
			zap.String("app", svc),
			zap.String("host", hostname),
		))

	zap.ReplaceGlobals(logger)
	return nil
}

func Flush() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func SetLevel(l string) {
	atomicLevel.SetLevel(parseLevel(l))
}

func GetLevel() string {
	return atomicLevel.Level().String()
}

func parseLevel(l string) zapcore.Level {
	switch l {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func ProdEncoderConf() zapcore.EncoderConfig {
	encConf := zap.NewProductionEncoderConfig()
	encConf.EncodeTime = zapcore.RFC3339TimeEncoder

	return encConf
}

func Verbosity(w http.ResponseWriter, r *http.Request) {
	log := zap.L()
	level := GetLevel()
	log.Info("current logging level", zap.String("level", level))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "{\"verbosity\": \"%s\"}", level)
}

func SetVerbosity(w http.ResponseWriter, r *http.Request) {
	log := zap.L()
	query := r.URL.Query()

	level := query.Get("v")
	if level == "" {
		http.Error(w, "'v' parameter is not set", http.StatusBadRequest)
		return
	}

	SetLevel(level)

	log.Info("updating logging level", zap.String("level", level))

	w.WriteHeader(http.StatusNoContent)
}
