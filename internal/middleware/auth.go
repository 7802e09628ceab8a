package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// InitDataMiddleware проверяет подпись init data мини-приложения.
// Токен бота передается явно, middleware не читает окружение
func InitDataMiddleware(botToken string, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		initDataQuery := c.GetHeader("init_data")
		if initDataQuery != "" {
			expIn := time.Minute * 20
			if debug {
				expIn = time.Hour * 5000
			}

			if err := initdata.Validate(initDataQuery, botToken, expIn); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to validate init data"})
				c.Abort()
				return
			}

			parsedData, err := initdata.Parse(initDataQuery)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse init data"})
				c.Abort()
				return
			}

			c.Set("user", parsedData.User)
		}

		c.Next()
	}
}
