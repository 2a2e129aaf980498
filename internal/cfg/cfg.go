package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Http     *HTTPConfig
	Db       *PGDBCfg
	Qdrant   *QdrantCfg
	Redis    *RedisCfg
	Minio    *MinIOCfg
	Kafka    *KafkaCfg
	Embedder *EmbedderCfg
	Indexer  *IndexerCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantCfg struct {
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string // имя коллекции в Qdrant
	UseTLS               bool
	VectorSize           uint64
	ScrollPageSize       uint32 // размер страницы scroll-а существующих ID
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	SearchTTL   time.Duration // TTL кэша результатов поиска
}

type MinIOCfg struct {
	MinioEndpoint     string
	BucketName        string // бакет с архивом исходных изображений
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	Enabled           bool // фолбэк в MinIO включается только при заданном бакете
}

type KafkaCfg struct {
	Topic       string
	Brokers     []string // пустой список означает, что события индексации отключены
	NetworkMode string
}

// EmbedderCfg настройки gRPC-клиента CLIP-сервиса.
type EmbedderCfg struct {
	Addr          string
	MaxConcurrent int
	MaxRetries    int
}

// IndexerCfg настройки конвейера индексации.
type IndexerCfg struct {
	FeedPath     string        // JSONL-фид скрейпера
	ImageRoot    string        // корень локальных изображений
	BatchSize    int           // размер батча upsert-а в Qdrant
	SkipLimit    int           // порог досрочного выхода по подряд проиндексированным товарам
	Workers      int           // размер пула воркеров
	FetchTimeout time.Duration // таймаут одного HTTP-запроса за изображением
	FetchRetries int           // число попыток скачивания
	RunBudget    time.Duration // мягкий дедлайн всего запуска (0 — без ограничения)
	SeedOnStart  bool          // запускать ли индексацию в фоне при старте API
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	indexer, err := loadIndexerCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:     http,
		Db:       db,
		Qdrant:   qdrant,
		Redis:    redis,
		Minio:    minio,
		Kafka:    loadKafkaCfg(),
		Embedder: loadEmbedderCfg(),
		Indexer:  indexer,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 30 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadQdrantCfg(log logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultVectorSize     = "512"
		defaultCollection     = "booth_items"
		defaultScrollPageSize = 10000
	)

	strPort := getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	port, err := strconv.Atoi(strPort)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		log.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	strVectorSize := getEnvOrDefault("VECTOR_SIZE", defaultVectorSize)
	vectorSize, err := strconv.ParseUint(strVectorSize, 10, 64)
	if err != nil {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	scrollPageSize, err := parseIntEnv("SCROLL_PAGE_SIZE", defaultScrollPageSize)
	if err != nil {
		log.Errorf(err, "invalid SCROLL_PAGE_SIZE")
		return nil, err
	}

	return &QdrantCfg{
		Host:                 getEnvOrDefault("QDRANT_HOST", "localhost"),
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:               useTLS,
		VectorSize:           vectorSize,
		ScrollPageSize:       uint32(scrollPageSize),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultSearchTTL    = 5 * time.Minute
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	dbStr := getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB))
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	searchTTL, err := parseDurationEnv("SEARCH_CACHE_TTL", defaultSearchTTL)
	if err != nil {
		log.Errorf(err, "invalid SEARCH_CACHE_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        addr,
		Password:    password,
		User:        user,
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		SearchTTL:   searchTTL,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	bucket := getEnv("BUCKET_NAME")

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        bucket,
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		Enabled:           bucket != "",
	}, nil
}

func loadKafkaCfg() *KafkaCfg {
	const (
		defaultTopic       = "index-events"
		defaultNetworkMode = "tcp"
	)

	var brokers []string
	if brokerStr := getEnv("KAFKA_BROKERS"); brokerStr != "" {
		brokers = strings.Split(brokerStr, ",")
	}

	return &KafkaCfg{
		Brokers:     brokers,
		Topic:       getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		NetworkMode: getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadEmbedderCfg() *EmbedderCfg {
	const (
		defaultHost          = "embedder"
		defaultPort          = "50051"
		defaultMaxConcurrent = 8
		defaultMaxRetries    = 3
	)

	host := getEnvOrDefault("EMBEDDER_HOST", defaultHost)
	port := getEnvOrDefault("EMBEDDER_PORT", defaultPort)

	return &EmbedderCfg{
		Addr:          host + ":" + port,
		MaxConcurrent: defaultMaxConcurrent,
		MaxRetries:    defaultMaxRetries,
	}
}

func loadIndexerCfg(log logger.Logger) (*IndexerCfg, error) {
	const (
		defaultFeedPath     = "scraper/data/popular_items_full.jsonl"
		defaultImageRoot    = "scraper"
		defaultBatchSize    = 50
		defaultSkipLimit    = 200
		defaultWorkers      = 8
		defaultFetchTimeout = 10 * time.Second
		defaultFetchRetries = 3
	)

	batchSize, err := parseIntEnv("INDEX_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		log.Errorf(err, "invalid INDEX_BATCH_SIZE")
		return nil, err
	}

	skipLimit, err := parseIntEnv("INDEX_SKIP_LIMIT", defaultSkipLimit)
	if err != nil {
		log.Errorf(err, "invalid INDEX_SKIP_LIMIT")
		return nil, err
	}

	workers, err := parseIntEnv("INDEX_WORKERS", defaultWorkers)
	if err != nil {
		log.Errorf(err, "invalid INDEX_WORKERS")
		return nil, err
	}

	fetchTimeout, err := parseDurationEnv("FETCH_TIMEOUT", defaultFetchTimeout)
	if err != nil {
		log.Errorf(err, "invalid FETCH_TIMEOUT")
		return nil, err
	}

	fetchRetries, err := parseIntEnv("FETCH_RETRIES", defaultFetchRetries)
	if err != nil {
		log.Errorf(err, "invalid FETCH_RETRIES")
		return nil, err
	}

	runBudget, err := parseDurationEnv("INDEX_RUN_BUDGET", 0)
	if err != nil {
		log.Errorf(err, "invalid INDEX_RUN_BUDGET")
		return nil, err
	}

	seedOnStart, err := strconv.ParseBool(getEnvOrDefault("SEED_ON_START", "false"))
	if err != nil {
		log.Errorf(err, "invalid SEED_ON_START")
		return nil, err
	}

	return &IndexerCfg{
		FeedPath:     getEnvOrDefault("FEED_PATH", defaultFeedPath),
		ImageRoot:    getEnvOrDefault("IMAGE_ROOT", defaultImageRoot),
		BatchSize:    batchSize,
		SkipLimit:    skipLimit,
		Workers:      workers,
		FetchTimeout: fetchTimeout,
		FetchRetries: fetchRetries,
		RunBudget:    runBudget,
		SeedOnStart:  seedOnStart,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
