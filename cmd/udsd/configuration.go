package main

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"

	"github.com/tbrandt/udssim/internal/supervisor"
	"github.com/tbrandt/udssim/internal/transport"
	"github.com/tbrandt/udssim/internal/transport/httpframe"
	"github.com/tbrandt/udssim/internal/transport/tcpframe"
	"github.com/tbrandt/udssim/internal/transport/wsframe"
	"github.com/tbrandt/udssim/internal/uds"
)

// tomlConfig describes the TOML-configuration.
type tomlConfig struct {
	Ecu     ecuConf
	Logging logConf
	Listen  []listenConf
}

// ecuConf describes the Ecu-configuration block.
type ecuConf struct {
	SessionTimeout  string `toml:"session-timeout"`
	RelockOnTimeout bool   `toml:"relock-on-timeout"`
	Fixture         string
}

// logConf describes the Logging-configuration block.
type logConf struct {
	Level        string
	ReportCaller bool `toml:"report-caller"`
	Format       string
}

// listenConf describes one Listen-configuration block, one per transport.
type listenConf struct {
	Protocol string
	Endpoint string
}

// parseListen inspects a "listen" listenConf and returns a Transport bound
// to the server.
func parseListen(conv listenConf, srv *uds.Server) (transport.Transport, error) {
	log.WithFields(log.Fields{
		"Endpoint": conv.Endpoint,
		"Protocol": conv.Protocol,
	}).Debug("Initialising frame transport")

	if conv.Endpoint == "" {
		return nil, fmt.Errorf("listen.endpoint is empty")
	}

	switch conv.Protocol {
	case "tcp":
		return tcpframe.NewServer(conv.Endpoint, srv), nil

	case "http":
		return httpframe.NewServer(conv.Endpoint, srv), nil

	case "ws":
		return wsframe.NewServer(conv.Endpoint, srv), nil

	default:
		return nil, fmt.Errorf("unknown listen.protocol \"%s\"", conv.Protocol)
	}
}

// configureLogging applies the Logging-configuration block to logrus.
func configureLogging(conf logConf) {
	if conf.Level != "" {
		if lvl, err := log.ParseLevel(conf.Level); err != nil {
			log.WithFields(log.Fields{
				"level":    conf.Level,
				"error":    err,
				"provided": "panic,fatal,error,warn,info,debug,trace",
			}).Warn("Failed to set log level. Please select one of the provided ones")
		} else {
			log.SetLevel(lvl)
		}
	}

	log.SetReportCaller(conf.ReportCaller)

	switch conf.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})

	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})

	default:
		log.Warn("Unknown logging format")
	}
}

// parseServer creates the Server, starts its session supervisor and its
// transports based on the given TOML configuration.
func parseServer(filename string) (srv *uds.Server, transports []transport.Transport, err error) {
	var conf tomlConfig
	if _, err = toml.DecodeFile(filename, &conf); err != nil {
		return
	}

	configureLogging(conf.Logging)

	sessionTimeout := supervisor.DefaultTimeout
	if conf.Ecu.SessionTimeout != "" {
		if sessionTimeout, err = time.ParseDuration(conf.Ecu.SessionTimeout); err != nil {
			err = fmt.Errorf("ecu.session-timeout is not a duration: %w", err)
			return
		}
	}

	srv = uds.NewServer()
	srv.State.SetRelockOnTimeout(conf.Ecu.RelockOnTimeout)

	if conf.Ecu.Fixture != "" {
		if err = srv.Store.Load(conf.Ecu.Fixture); err != nil {
			return
		}

		log.WithField("fixture", conf.Ecu.Fixture).Info("Loaded ECU data fixture")
	}

	// Collect every broken listen block before giving up, so one run of the
	// daemon reports the whole configuration's problems.
	var listenErrs error
	for _, conv := range conf.Listen {
		if trans, lErr := parseListen(conv, srv); lErr != nil {
			listenErrs = multierror.Append(listenErrs, lErr)
		} else {
			transports = append(transports, trans)
		}
	}
	if listenErrs != nil {
		err = listenErrs
		return
	}

	if len(transports) == 0 {
		err = fmt.Errorf("no listen block is configured")
		return
	}

	for _, trans := range transports {
		if tErr, _ := trans.Start(); tErr != nil {
			err = fmt.Errorf("starting %s errored: %w", trans.Address(), tErr)
			return
		}

		log.WithField("transport", trans.Address()).Info("Started frame transport")
	}

	srv.StartSupervisor(sessionTimeout)

	return
}
