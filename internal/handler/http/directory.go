package http

import (
	"net/http"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/directory"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/handler/http/response"
)

type DirectoryHandler interface {
	ListTeachers(w http.ResponseWriter, r *http.Request)
	ListStudents(w http.ResponseWriter, r *http.Request)
}

type directoryHandlerImpl struct {
	directoryService directory.DirectoryService
}

func NewDirectoryHandler(directoryService directory.DirectoryService) DirectoryHandler {
	return &directoryHandlerImpl{directoryService: directoryService}
}

// ListTeachers implements DirectoryHandler.
func (h *directoryHandlerImpl) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.directoryService.ListTeachers(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writePeople(w, teachers)
}

// ListStudents implements DirectoryHandler.
func (h *directoryHandlerImpl) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.directoryService.ListStudents(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	writePeople(w, students)
}

func writePeople(w http.ResponseWriter, people []directory.Person) {
	data := make([]directory.PersonResponse, len(people))
	for i, p := range people {
		data[i] = directory.NewPersonResponse(p)
	}
	response.SuccessWithMeta(w, data, &response.Meta{Total: len(data)})
}
