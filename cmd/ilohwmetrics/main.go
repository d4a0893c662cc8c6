/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
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

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/comcast/ilohwmetrics/buildinfo"
	"github.com/comcast/ilohwmetrics/common"
	"github.com/comcast/ilohwmetrics/config"
	"github.com/comcast/ilohwmetrics/ipmi"
	"github.com/comcast/ilohwmetrics/logger"
	"github.com/comcast/ilohwmetrics/middleware/logging"
	"github.com/comcast/ilohwmetrics/redfish"
	ilo_vault "github.com/comcast/ilohwmetrics/vault"
	"go.uber.org/zap"

	"gopkg.in/alecthomas/kingpin.v2"
)

const app = buildinfo.App

var (
	a = kingpin.New(app, "HPE iLO chassis and smart storage battery health over redfish")

	username      = a.Flag("user", "BMC username").Short('u').Default("Administrator").Envar("BMC_USERNAME").String()
	password      = a.Flag("password", "BMC password").Short('p').Default("Administrator").Envar("BMC_PASSWORD").String()
	bmcScheme     = a.Flag("scheme", "BMC Scheme to use").Default("https").Envar("BMC_SCHEME").String()
	bmcTimeout    = a.Flag("timeout", "BMC request timeout").Default("30s").Envar("BMC_TIMEOUT").Duration()
	sslVerify     = a.Flag("ssl-verify", "verify the BMC certificate").Default("false").Envar("SSL_VERIFY").Bool()
	chassisIDs    = a.Flag("chassis-id", "redfish chassis member id, repeatable").Default(config.DefaultChassisID).Envar("CHASSIS_ID").Strings()
	target        = a.Flag("target", "BMC host, skips address discovery when set").Default("").Envar("BMC_TARGET").String()
	ipmiCommand   = a.Flag("ipmi.command", "management interface tool used to discover the BMC address").Default(config.DefaultIPMICommand).Envar("IPMI_COMMAND").String()
	ipmiArgs      = a.Flag("ipmi.args", "arguments passed to the management interface tool").Default(strings.Join(config.DefaultIPMIArgs, " ")).Envar("IPMI_ARGS").String()
	strictAddress = a.Flag("ipmi.strict-address", "reject discovered addresses with octets above 255").Default("false").Envar("IPMI_STRICT_ADDRESS").Bool()
	proxyHost     = a.Flag("proxy", "proxy for BMC requests, overrides the proxy environment variables").Default("").Envar("BMC_PROXY").String()
	sessionLogout = a.Flag("session.logout", "delete the redfish session once the chassis are read").Default("false").Envar("SESSION_LOGOUT").Bool()
	configFile    = a.Flag("config.file", "YAML file whose keys override the flag values").Default("").Envar("CONFIG_FILE").String()

	logLevel          = a.Flag("log.level", "log level verbosity").PlaceHolder("[debug|info|warn|error]").Default("info").Envar("LOG_LEVEL").String()
	logMethod         = a.Flag("log.method", "alternative method for logging in addition to stdout").PlaceHolder("[file|vector]").Default("").Envar("LOG_METHOD").String()
	logFilePath       = a.Flag("log.file-path", "directory path where log files are written if log-method is file").Default("/var/log/ilohwmetrics").Envar("LOG_FILE_PATH").String()
	logFileMaxSize    = a.Flag("log.file-max-size", "max file size in megabytes if log-method is file").Default("256").Envar("LOG_FILE_MAX_SIZE").Int()
	logFileMaxBackups = a.Flag("log.file-max-backups", "max file backups before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_BACKUPS").Int()
	logFileMaxAge     = a.Flag("log.file-max-age", "max file age in days before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_AGE").Int()
	vectorEndpoint    = a.Flag("vector.endpoint", "vector endpoint to send structured json logs to").Default("http://0.0.0.0:4444").Envar("VECTOR_ENDPOINT").String()

	vaultAddr          = a.Flag("vault.addr", "Vault instance address to get chassis credentials from").Default("https://vault.com").Envar("VAULT_ADDRESS").String()
	vaultRoleId        = a.Flag("vault.role-id", "Vault Role ID for AppRole").Default("").Envar("VAULT_ROLE_ID").String()
	vaultSecretId      = a.Flag("vault.secret-id", "Vault Secret ID for AppRole").Default("").Envar("VAULT_SECRET_ID").String()
	vaultMountPath     = a.Flag("vault.mount-path", "Vault kv mount, kv2 selects the versioned engine").Default("kv2").Envar("VAULT_MOUNT_PATH").String()
	vaultPath          = a.Flag("vault.path", "Vault path prefix, the BMC address is appended").Default("").Envar("VAULT_PATH").String()
	vaultUserField     = a.Flag("vault.user-field", "secret field holding the BMC username").Default("user").Envar("VAULT_USER_FIELD").String()
	vaultPasswordField = a.Flag("vault.password-field", "secret field holding the BMC password").Default("password").Envar("VAULT_PASSWORD_FIELD").String()

	statusCmd    = a.Command("status", "query the BMC once and print chassis health").Default()
	outputFormat = statusCmd.Flag("output", "output format").Short('o').Default("text").Enum("text", "json")

	serveCmd     = a.Command("serve", "serve chassis health as prometheus metrics")
	exporterPort = serveCmd.Flag("port", "exporter port").Default("10023").Envar("EXPORTER_PORT").String()

	versionCmd = a.Command("version", "print build information")

	log *zap.Logger
)

func main() {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}

	a.HelpFlag.Short('h')

	cmd, err := a.Parse(os.Args[1:])
	if err != nil {
		panic(fmt.Errorf("error parsing argument flags - %s", err.Error()))
	}

	if cmd == versionCmd.FullCommand() {
		if err := buildinfo.Print(os.Stdout); err != nil {
			os.Exit(1)
		}
		return
	}

	// validate logFilePath exists and is a directory
	if *logMethod == "file" {
		fd, err := os.Stat(*logFilePath)
		if os.IsNotExist(err) {
			panic(err)
		}
		if !fd.IsDir() {
			panic(fmt.Errorf("%s is not a directory", *logFilePath))
		}
	}

	c := &config.Config{
		BMCScheme:     *bmcScheme,
		BMCTimeout:    *bmcTimeout,
		SSLVerify:     *sslVerify,
		User:          *username,
		Pass:          *password,
		Target:        *target,
		ChassisIDs:    *chassisIDs,
		IPMICommand:   *ipmiCommand,
		IPMIArgs:      strings.Fields(*ipmiArgs),
		StrictAddress: *strictAddress,
		SessionLogout: *sessionLogout,
	}

	if *configFile != "" {
		if err := config.LoadFile(*configFile, c); err != nil {
			panic(err)
		}
	}

	config.NewConfig(c)

	// init logger config
	logConfig := logger.LoggerConfig{
		LogLevel:  *logLevel,
		LogMethod: *logMethod,
		LogFile: logger.LogFile{
			Path:       *logFilePath,
			MaxSize:    *logFileMaxSize,
			MaxBackups: *logFileMaxBackups,
			MaxAge:     *logFileMaxAge,
		},
		VectorEndpoint: *vectorEndpoint,
	}

	err = logger.Initialize(app, hostname, logConfig)
	if err != nil {
		panic(fmt.Errorf("error initializing logger - log_method=%s vector_endpoint=%s log_file_path=%s log_file_max_size=%d log_file_max_backups=%d log_file_max_age=%d - err=%s",
			*logMethod, *vectorEndpoint, *logFilePath, *logFileMaxSize, *logFileMaxBackups, *logFileMaxAge, err.Error()))
	}

	log = zap.L()

	if *logMethod == "vector" {
		log.Info("successfully initialized logger", zap.String("log_method", *logMethod),
			zap.String("vector_endpoint", *vectorEndpoint))
	} else if *logMethod == "file" {
		log.Info("successfully initialized logger", zap.String("log_method", *logMethod),
			zap.String("log_file_path", *logFilePath),
			zap.Int("log_file_max_size", *logFileMaxSize),
			zap.Int("log_file_max_backups", *logFileMaxBackups),
			zap.Int("log_file_max_age", *logFileMaxAge))
	}

	ctx := logging.WithTraceID(context.Background())
	if *proxyHost != "" {
		ctx = redfish.WithProxyURL(ctx, *proxyHost)
	}

	// configure vault client if vaultRoleId & vaultSecretId are set
	if *vaultRoleId != "" && *vaultSecretId != "" {
		vault, err := ilo_vault.NewVaultAppRoleClient(
			ctx,
			ilo_vault.Parameters{
				Address:         *vaultAddr,
				ApproleRoleID:   *vaultRoleId,
				ApproleSecretID: *vaultSecretId,
			},
		)
		if err != nil {
			log.Error("failed initializing vault client", zap.Error(err),
				zap.String("vault_address", *vaultAddr),
				zap.String("vault_role_id", *vaultRoleId))
		} else {
			common.ChassisCreds.Vault = vault
			common.ChassisCreds.Secret = &ilo_vault.SecretProperties{
				MountPath:     *vaultMountPath,
				Path:          *vaultPath,
				UserField:     *vaultUserField,
				PasswordField: *vaultPasswordField,
			}
		}
	}

	switch cmd {
	case serveCmd.FullCommand():
		serve(ctx, ipmi.ExecRunner{}, *exporterPort, *proxyHost)
	default:
		if err := runStatus(ctx, ipmi.ExecRunner{}, os.Stdout, *outputFormat); err != nil {
			fields := []zap.Field{zap.Error(err), zap.Any("trace_id", ctx.Value(logging.TraceIDKey))}
			if se, ok := err.(*stageError); ok {
				fields = append(fields, zap.String("stage", se.stage))
			}
			log.Error("unable to read chassis health", fields...)
			logger.Flush()
			os.Exit(1)
		}
	}

	logger.Flush()
}
