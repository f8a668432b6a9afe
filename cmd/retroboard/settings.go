package main

import "strings"

const (
	StoreDriverSQLite  = "sqlite"
	StoreDriverMongoDB = "mongodb"
)

type Settings struct {
	Port        int    `env:"PORT,default=3001"`
	BasePath    string `env:"BASE_PATH"`
	LogEncoding string `env:"LOG_ENCODING,default=console"`

	StoreDriver     string `env:"STORE_DRIVER,default=sqlite"`
	SQLitePath      string `env:"SQLITE_PATH,default=/tmp/retroboard.db"`
	MongoDBURI      string `env:"MONGODB_URI,default=mongodb://localhost:27017"`
	MongoDBDatabase string `env:"MONGODB_DATABASE,default=retroboard"`

	SendBufferSize int    `env:"SEND_BUFFER_SIZE,default=256"`
	ReadLimit      int    `env:"READ_LIMIT,default=4096"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
}

func (s Settings) AllowedOriginList() []string {
	if s.AllowedOrigins == "" {
		return nil
	}

	return strings.Split(s.AllowedOrigins, ",")
}
