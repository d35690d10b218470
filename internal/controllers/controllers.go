package controllers

import (
	"echosorter/internal/services"

	authController "echosorter/internal/controllers/auth"
	libraryController "echosorter/internal/controllers/library"
)

type Controllers struct {
	Auth    authController.AuthControllerInterface
	Library libraryController.LibraryControllerInterface
}

func New(services services.Service) Controllers {
	return Controllers{
		Auth:    authController.New(services),
		Library: libraryController.New(services),
	}
}
