package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
// Nó chứa thông tin cơ sở dữ liệu, HTTP server và các tham số truy vấn sales
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:"8080"`                  // Cổng server
	StorageDriver         string `env:"STORAGE_DRIVER" envDefault:"mongo"`          // mongo | memory
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI"`                     // URL kết nối cơ sở dữ liệu
	MongoDB_DBName_Data   string `env:"MONGODB_DBNAME_DATA" envDefault:"truestate"` // Tên cơ sở dữ liệu chứa sales
	MongoDB_ColName_Sales string `env:"MONGODB_COLNAME_SALES" envDefault:"sales"`   // Tên collection sales
	EnsureIndexes         bool   `env:"ENSURE_INDEXES" envDefault:"false"`          // Tạo index khi khởi động
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`                // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`  // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`            // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`          // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`       // Bật/tắt rate limiting
	BodyLimitMB           int    `env:"BODY_LIMIT_MB" envDefault:"100"`             // Giới hạn body (upload CSV)
	// TLS/HTTPS Configuration
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn đến file certificate (.crt hoặc .pem)
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn đến file private key (.key)
	// Sales query
	DefaultPageSize     int      `env:"SALES_DEFAULT_PAGE_SIZE" envDefault:"10"`
	MaxPageSize         int      `env:"SALES_MAX_PAGE_SIZE" envDefault:"500"`
	NumericFields       []string `env:"SALES_NUMERIC_FIELDS" envSeparator:","` // Bổ sung vào danh sách field số mặc định
	DateTimezone        string   `env:"DATE_TIMEZONE" envDefault:"UTC"`
	QueryTimeoutSeconds int      `env:"QUERY_TIMEOUT_SECONDS" envDefault:"30"`
	FacetCacheTTL       int      `env:"FACET_CACHE_TTL_SECONDS" envDefault:"0"` // 0 = không cache
	// Import CSV
	UploadBatchSize int `env:"UPLOAD_BATCH_SIZE" envDefault:"5000"`
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Tìm thư mục config/env bằng cách đi lên thư mục cha
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc dữ liệu cấu hình từ file env (nếu có) rồi parse biến môi trường.
// Biến môi trường đã set sẵn luôn được ưu tiên hơn giá trị trong file.
func NewConfig() (*Configuration, error) {
	if envPath := getEnvPath(); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("load env file %s: %w", envPath, err)
			}
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate kiểm tra các ràng buộc giữa các field
func (c *Configuration) validate() error {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	switch c.StorageDriver {
	case "mongo":
		if c.MongoDB_ConnectionURI == "" {
			return fmt.Errorf("MONGODB_CONNECTION_URI is required when STORAGE_DRIVER=mongo")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 10
	}
	if c.MaxPageSize < c.DefaultPageSize {
		c.MaxPageSize = c.DefaultPageSize
	}
	if c.UploadBatchSize <= 0 {
		c.UploadBatchSize = 5000
	}
	return nil
}
