package utils

import (
	"crypto/md5"
	cryptorand "crypto/rand"
	"encoding/hex"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	snowflake "github.com/holdno/snowFlakeByGo"

	"github.com/civitas-ai/civitas-ai/pkg/errors"
	"github.com/civitas-ai/civitas-ai/pkg/i18n"
)

var idWorker *snowflake.Worker

// SetupIDWorker must be called once at startup before any ID is
// generated.
func SetupIDWorker(clusterID int64) {
	idWorker, _ = snowflake.NewWorker(clusterID)
}

func GenUniqID() int64 {
	return idWorker.GetId()
}

func GenUniqIDStr() string {
	return strconv.FormatInt(GenUniqID(), 10)
}

// GenSpecificIDStr builds the embedding/node record keys, e.g.
// "emb_{file_id}_{column}_{rand}".
func GenSpecificIDStr(prefix string, parts ...string) string {
	id := prefix
	for _, p := range parts {
		id += "_" + p
	}
	return id + "_" + RandomStr(8)
}

// GenHexID builds observability record IDs, e.g. "log_{32 hex chars}".
func GenHexID(prefix string) string {
	b := make([]byte, 16)
	cryptorand.Read(b)
	return prefix + "_" + hex.EncodeToString(b)
}

const randomStrSource = "abcdefghijklmnopqrstuvwxyz0123456789"

func RandomStr(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = randomStrSource[rand.Intn(len(randomStrSource))]
	}
	return string(b)
}

// Random returns an int in [minimum, maximum]. Degenerate ranges
// collapse to minimum.
func Random(minimum, maximum int) int {
	if maximum <= minimum {
		return minimum
	}
	return minimum + rand.Intn(maximum-minimum+1)
}

func MD5(str string) string {
	sum := md5.Sum([]byte(str))
	return hex.EncodeToString(sum[:])
}

// TimeNowUnixMicro is the timestamp used for observability records.
// Microsecond resolution keeps retrieval ordering strict under rapid
// writes.
func TimeNowUnixMicro() int64 {
	return time.Now().UnixMicro()
}

func TimeNowUnix() int64 {
	return time.Now().Unix()
}

func FormatDurationMS(start, end int64) float64 {
	return float64(end-start) / 1000.0
}

func Pointer[T any](v T) *T {
	return &v
}

// StringOrNil maps empty strings to nil for nullable columns.
func StringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func SprintID(id int64) string {
	return fmt.Sprintf("%d", id)
}

func BindArgsWithGin(c *gin.Context, req interface{}) error {
	err := c.ShouldBindWith(req, binding.Default(c.Request.Method, c.ContentType()))
	if err != nil {
		return errors.New(fmt.Sprintf("Gin.ShouldBindWith.%s.%s", c.Request.Method, c.Request.URL.Path), i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
	}
	return nil
}
