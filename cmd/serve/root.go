package serve

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cmdUtil "github.com/pbeckmann/fKV/cmd/util"
	"github.com/joho/godotenv"
	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the fKV server",
		Long:    `Start the fKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is FKV_<flag> (e.g. FKV_LOG_LEVEL=debug)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, common.DefaultServerEndpoint, cmdUtil.WrapString("The address on which the server will listen (host:port for tcp/ws, a socket path for unix)"))

	key = "admin-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address of the HTTP admin API serving /healthz, /metrics and pprof. Empty disables the admin API"))

	key = "engine"
	ServeCmd.PersistentFlags().String(key, "cstore", cmdUtil.WrapString("The store engine to use. cstore is a sharded concurrent map, astore serializes all operations through a single owner goroutine"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 0, cmdUtil.WrapString("Per-exchange read/write deadline in seconds. 0 disables deadlines: a stalled peer then occupies its connection goroutine until it disconnects"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "log-file"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional path of a JSON log file, rotated automatically. Empty logs to stderr only"))

	key = "transport-tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to disable Nagle's algorithm on accepted connections (only for tcp)"))

	key = "transport-tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval for accepted connections (in seconds, 0 = OS default, only for tcp)"))

	key = "transport-tcp-linger"
	ServeCmd.PersistentFlags().Int(key, -1, cmdUtil.WrapString("The linger time on close (in seconds, negative = OS default, only for tcp)"))

	key = "transport-read-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket read buffer (in KB, 0 = OS default)"))

	key = "transport-write-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket write buffer (in KB, 0 = OS default)"))

	key = "reuse-port"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Bind multiple SO_REUSEPORT listeners so several accept loops share the port (only for tcp)"))

	key = "accept-loops"
	ServeCmd.PersistentFlags().Int(key, 1, cmdUtil.WrapString("Number of accept loops when reuse-port is enabled"))
}

// processConfig reads the configuration from the command line flags and
// environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.AdminEndpoint = viper.GetString("admin-endpoint")
	serveCmdConfig.StoreEngine = viper.GetString("engine")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.LogFile = viper.GetString("log-file")
	serveCmdConfig.Transport = common.TransportConfig{
		TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
		TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
		TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
		ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
		WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
		ReusePort:       viper.GetBool("reuse-port"),
		AcceptLoops:     viper.GetInt("accept-loops"),
	}

	return nil
}

// run starts the fKV server and blocks until a shutdown signal arrives
func run(_ *cobra.Command, _ []string) error {
	// Create the logger
	log, err := common.NewLogger(serveCmdConfig.LogLevel, serveCmdConfig.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info(serveCmdConfig.String())

	// Create the transport
	t, err := cmdUtil.GetServerTransport(log)
	if err != nil {
		return err
	}

	// Create the server
	s, err := server.NewRPCServer(*serveCmdConfig, t, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start serving
	if err := s.Serve(); err != nil {
		return err
	}
	log.Info("server started", zap.String("endpoint", serveCmdConfig.Endpoint))

	// Start the admin API next to the RPC listener
	admin, err := startAdminAPI(serveCmdConfig.AdminEndpoint, log)
	if err != nil {
		_ = s.Shutdown()
		return err
	}

	// Wait for the shutdown signal
	<-ctx.Done()
	stop()
	log.Info("shutting down gracefully, press Ctrl+C again to force")

	if admin != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := admin.Shutdown(shutdownCtx); err != nil {
			log.Error("admin server forced to shutdown", zap.Error(err))
		}
	}

	if err := s.Shutdown(); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
		return err
	}

	log.Info("exiting")
	return nil
}

// initConfig reads in the env files and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("fkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
