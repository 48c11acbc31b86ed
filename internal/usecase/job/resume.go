package job

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"jobboard/internal/apperror"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

const DefaultMaxResumeSize int64 = 5 * 1024 * 1024

var resumeExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

var resumeNameReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// ResumeName is "<applicant name>_<job id><ext>" with spaces and path separators in the
// name turned into underscores.
func ResumeName(applicantName string, jobID uuid.UUID, ext string) string {
	return resumeNameReplacer.Replace(applicantName) + "_" + jobID.String() + ext
}

func (s *Service) checkResume(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", apperror.Validation("Please upload your resume")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !resumeExtensions[ext] {
		return "", apperror.Validation("Please upload a valid resume")
	}
	if file.Size > s.maxResumeSize {
		return "", ResumeTooLarge(s.maxResumeSize)
	}
	return ext, nil
}

func ResumeTooLarge(maxSize int64) error {
	return apperror.Validation(fmt.Sprintf("Please upload a resume less than %sMB", megabytes(maxSize)))
}

func megabytes(n int64) string {
	return strconv.FormatFloat(float64(n)/(1024*1024), 'f', -1, 64)
}

// Apply records applicant's application to the job and returns the stored resume name.
// The job record is only touched once the resume is safely stored.
func (s *Service) Apply(ctx context.Context, jobID uuid.UUID, applicant user.User, file *multipart.FileHeader) (string, error) {
	j, err := s.find(ctx, jobID)
	if err != nil {
		return "", err
	}
	if !j.AcceptsApplications(s.now()) {
		return "", apperror.Validation("Job application date is expired")
	}

	applied, err := s.jobs.HasApplied(ctx, jobID, applicant.ID)
	if err != nil {
		return "", err
	}
	if applied {
		return "", errAlreadyApplied()
	}

	ext, err := s.checkResume(file)
	if err != nil {
		return "", err
	}
	name := ResumeName(applicant.Name, jobID, ext)

	if err := s.saveResume(ctx, name, file); err != nil {
		return "", apperror.WithStatus(apperror.KindUpstream, 500, "Resume upload failed", err)
	}

	err = s.jobs.AddApplication(ctx, job.Application{
		JobID:     jobID,
		UserID:    applicant.ID,
		Resume:    name,
		AppliedAt: s.now(),
	})
	switch {
	case err == nil:
		return name, nil
	case errors.Is(err, job.ErrAlreadyApplied):
		// A concurrent request won; it references the same file name, so the file stays.
		return "", errAlreadyApplied()
	case errors.Is(err, job.ErrNotFound):
		s.removeResumes(ctx, []string{name})
		return "", apperror.NotFound("Job not found")
	default:
		s.removeResumes(ctx, []string{name})
		return "", err
	}
}

func (s *Service) saveResume(ctx context.Context, name string, file *multipart.FileHeader) error {
	if s.store == nil {
		return errors.New("no resume storage configured")
	}
	f, err := file.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	return s.store.Save(ctx, name, f, file.Size)
}

func errAlreadyApplied() error {
	return apperror.Conflict("You have already applied to this job")
}
