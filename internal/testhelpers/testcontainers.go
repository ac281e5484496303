// This file starts the backing services for integration tests with testcontainers.
// It is used by package tests and by the cmd/testcontainers standalone executable,
// in which case t is nil. Expects environment variables to be loaded from .env files.
//

package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestContainers holds the started services and their host endpoints
type TestContainers struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	AuthorizerContainer testcontainers.Container
	RedisContainer      testcontainers.Container

	DBHost    string
	DBPort    string
	AuthzURL  string
	RedisAddr string
}

// Terminate stops every started container and removes the network
func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.RedisContainer != nil {
		if err := tc.RedisContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Redis: %v", err)
		}
	}
	if tc.AuthorizerContainer != nil {
		if err := tc.AuthorizerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Authorizer: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// ContainerOptions selects the services to start
type ContainerOptions struct {
	Database   bool
	Authorizer bool
	Redis      bool
}

// RequireContainers skips t unless the images for the requested services are configured
func RequireContainers(t *testing.T, opts ContainerOptions) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	if opts.Database && os.Getenv("DB_IMAGE") == "" {
		t.Skip("DB_IMAGE not set")
	}
	if opts.Authorizer && os.Getenv("AUTHZ_IMAGE") == "" {
		t.Skip("AUTHZ_IMAGE not set")
	}
	if opts.Redis && os.Getenv("REDIS_IMAGE") == "" {
		t.Skip("REDIS_IMAGE not set")
	}
}

// CreateTestContainers starts the requested services on a shared network.
// The authorizer keeps its users in the database container, so it implies Database.
func CreateTestContainers(t *testing.T, opts ContainerOptions) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	if opts.Authorizer {
		opts.Database = true
	}

	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
		return nil, err
	}
	testContainers.Network = nw
	networkName := nw.Name

	dbType := envOr("DB_TYPE", "mariadb")
	dbNetworkName := envOr("DB_HOST", "database")

	if opts.Database {
		tcpDbPort, err := nat.NewPort("tcp", defaultDBPort(dbType))
		if err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to create DB port")
			return nil, err
		}

		dbImage := os.Getenv("DB_IMAGE")
		if exists, err := imageExists(ctx, dbImage); err == nil && !exists {
			logMessage(t, "Image %s not present locally, pulling...", dbImage)
		}

		dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        dbImage,
				ExposedPorts: []string{string(tcpDbPort)},
				Env:          getDBInitEnvMap(dbType),
				WaitingFor:   wait.ForListeningPort(tcpDbPort).WithStartupTimeout(90 * time.Second),
				Networks:     []string{networkName},
				NetworkAliases: map[string][]string{
					networkName: {dbNetworkName},
				},
			},
			Started: true,
		})
		if err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to start Database")
			return nil, err
		}
		testContainers.DBContainer = dbContainer

		dbHost, _ := dbContainer.Host(ctx)
		dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)
		testContainers.DBHost = dbHost
		testContainers.DBPort = dbPort.Port()
		logMessage(t, "DB_HOST=%s DB_PORT=%s", dbHost, dbPort.Port())

		if dbType == "mysql" || dbType == "mariadb" {
			if err := performMySQLDBInit(dbHost, dbPort); err != nil {
				testContainers.Terminate(t)
				exitWithError(t, err, "Failed to initialize databases")
				return nil, err
			}
		}
	}

	if opts.Authorizer {
		authzNetworkName := "authorizer"
		authzPortNumber := envOr("AUTHZ_PORT", "8080")
		tcpAuthzPort, err := nat.NewPort("tcp", authzPortNumber)
		if err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to create Authorizer port")
			return nil, err
		}

		authzDbConnection := fmt.Sprintf("root:%s@tcp(%s:%s)/%s",
			os.Getenv("DB_ROOT_PASSWORD"), dbNetworkName, defaultDBPort(dbType), envOr("AUTHZ_DATABASE", "authorizer"))

		authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        os.Getenv("AUTHZ_IMAGE"),
				ExposedPorts: []string{string(tcpAuthzPort)},
				Env: map[string]string{
					"ENV":           "production",
					"CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
					"PORT":          authzPortNumber,
					"DATABASE_TYPE": dbType,
					"DATABASE_NAME": envOr("AUTHZ_DATABASE", "authorizer"),
					"DATABASE_URL":  authzDbConnection,
					"ADMIN_SECRET":  os.Getenv("AUTHZ_ADMIN_SECRET"),
					"ROLES":         "admin,user",
					"DEFAULT_ROLES": "user",
				},
				WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
				Networks:   []string{networkName},
				NetworkAliases: map[string][]string{
					networkName: {authzNetworkName},
				},
			},
			Started: true,
		})
		if err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to start Authorizer")
			return nil, err
		}
		testContainers.AuthorizerContainer = authorizerContainer

		authzHost, _ := authorizerContainer.Host(ctx)
		authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
		testContainers.AuthzURL = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())
		logMessage(t, "AUTHZ_URL=%s", testContainers.AuthzURL)
	}

	if opts.Redis {
		tcpRedisPort, _ := nat.NewPort("tcp", "6379")
		redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        os.Getenv("REDIS_IMAGE"),
				ExposedPorts: []string{string(tcpRedisPort)},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
				Networks:     []string{networkName},
			},
			Started: true,
		})
		if err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to start Redis")
			return nil, err
		}
		testContainers.RedisContainer = redisContainer

		redisHost, _ := redisContainer.Host(ctx)
		redisPort, _ := redisContainer.MappedPort(ctx, tcpRedisPort)
		testContainers.RedisAddr = fmt.Sprintf("%s:%s", redisHost, redisPort.Port())
		logMessage(t, "REDIS_ADDR=%s", testContainers.RedisAddr)
	}

	logMessage(t, "Testcontainers started successfully")
	return testContainers, nil
}

func defaultDBPort(dbType string) string {
	if dbType == "postgres" {
		return "5432"
	}
	return "3306"
}

func getDBInitEnvMap(dbType string) map[string]string {
	switch dbType {
	case "postgres":
		return map[string]string{
			"POSTGRES_PASSWORD": os.Getenv("DB_PASSWORD"),
			"POSTGRES_USER":     os.Getenv("DB_USER"),
			"POSTGRES_DB":       envOr("DB_DATABASE", "archhub"),
		}
	default:
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": os.Getenv("DB_ROOT_PASSWORD"),
			"MYSQL_DATABASE":      envOr("DB_DATABASE", "archhub"),
			"MYSQL_USER":          os.Getenv("DB_USER"),
			"MYSQL_PASSWORD":      os.Getenv("DB_PASSWORD"),
		}
	}
}

// performMySQLDBInit creates the authorizer database once the server accepts connections
func performMySQLDBInit(dbHost string, dbPort nat.Port) error {
	dsn := mysqldriver.NewConfig()
	dsn.User = "root"
	dsn.Passwd = os.Getenv("DB_ROOT_PASSWORD")
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%s", dbHost, dbPort.Port())

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	// The port opens before the server finishes its init scripts
	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("database not ready after 30 seconds: %w", err)
	}

	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", envOr("AUTHZ_DATABASE", "authorizer")),
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", envOr("DB_DATABASE", "archhub")),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* TO '%s'@'%%'", envOr("DB_DATABASE", "archhub"), os.Getenv("DB_USER")),
		"FLUSH PRIVILEGES",
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), stmt)
		}
	}
	return nil
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
