package server

//go:generate swag init -d ../.. -g internal/server/swagger.go -o internal/server/docs

// @title Pharmaflow API
// @version 1.0
// @description Multi-agent discovery orchestration for pharmaceutical research. Submit a molecule, poll its status, and collect the combined findings.
// @contact.name Pharmaflow Maintainers
// @contact.url https://github.com/raysh454/pharmaflow
// @BasePath /
