package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type studentRepository interface {
	CreateProfiles(ctx context.Context, profiles []models.StudentProfile) error
	FindProfileByID(ctx context.Context, id string) (*models.StudentProfile, error)
	ListProfiles(ctx context.Context) ([]models.StudentProfile, error)
	FindProfilesBySrNos(ctx context.Context, srNos []string) ([]models.StudentProfile, error)
	ExistingSrNos(ctx context.Context, srNos []string) (map[string]bool, error)
	UpdateProfile(ctx context.Context, profile *models.StudentProfile) error
	LinkUser(ctx context.Context, profileID, userID string) error
	ListProfileUsers(ctx context.Context, profileID string) ([]models.UserContact, error)
	StudentsByProfile(ctx context.Context, profileID string) ([]models.Student, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.StudentDetail, error)
	BatchCreate(ctx context.Context, students []models.Student) error
	FindStudent(ctx context.Context, id string) (*models.Student, error)
	EnrolledSrNos(ctx context.Context, sessionID string, srNos []string) (map[string]bool, error)
	RollNosByClass(ctx context.Context, classID string) (map[string]bool, error)
	UpdateStudent(ctx context.Context, student *models.Student) error
}

type contactUserRepository interface {
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error)
	UpsertByEmail(ctx context.Context, user *models.User) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type studentMarksReader interface {
	MarksForStudent(ctx context.Context, studentID string) ([]models.TestMarks, error)
}

type gradeSectionResolver interface {
	FindByGradeSection(ctx context.Context, sessionID string, grade models.Grade, section string) (*models.Class, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.ClassRef, error)
}

type groupChecker interface {
	ExistingGroupIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// ProfileInput describes one profile in an add-profiles batch.
type ProfileInput struct {
	SrNo        string    `json:"srNo" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	DOB         time.Time `json:"dob" validate:"required"`
	Address     string    `json:"address"`
	Emails      []string  `json:"emails" validate:"dive,email"`
	FatherName  string    `json:"fatherName"`
	MotherName  string    `json:"motherName"`
	FatherOcc   string    `json:"fatherOcc"`
	MotherOcc   string    `json:"motherOcc"`
	FatherPhone string    `json:"fatherPhone"`
	MotherPhone string    `json:"motherPhone"`
	Gender      string    `json:"gender" validate:"required,oneof=MALE FEMALE"`
}

// EnrollEntry describes one student in an enrollment batch.
type EnrollEntry struct {
	SrNo    string `json:"srNo" validate:"required"`
	RollNo  string `json:"rollNo" validate:"required"`
	Grade   string `json:"grade" validate:"required"`
	Section string `json:"section" validate:"required"`
	GroupID string `json:"group_id"`
}

// UpdateStudentRequest updates an enrollment and its contact links.
type UpdateStudentRequest struct {
	StudentID string   `json:"student_id" validate:"required"`
	Emails    []string `json:"emails" validate:"dive,email"`
	RollNo    string   `json:"rollNo"`
	ClassID   string   `json:"class_id"`
	GroupID   string   `json:"group_id"`
}

// StudentRecord bundles a profile with the marks recorded against its
// enrollments.
type StudentRecord struct {
	models.ProfileDetail
	Marks []models.TestMarks `json:"marks"`
}

// StudentService manages student profiles and enrollments.
type StudentService struct {
	repo      studentRepository
	users     contactUserRepository
	classes   gradeSectionResolver
	groups    groupChecker
	terms     latestTermProvider
	marks     studentMarksReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, users contactUserRepository, classes gradeSectionResolver, groups groupChecker, terms latestTermProvider, marks studentMarksReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, users: users, classes: classes, groups: groups, terms: terms, marks: marks, validator: validate, logger: logger}
}

// AddProfiles creates profiles, silently skipping serial numbers that
// already exist, and creates or reuses contact users for each new
// profile's emails and guardian phones.
func (s *StudentService) AddProfiles(ctx context.Context, inputs []ProfileInput) (int, error) {
	if len(inputs) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "no profiles supplied")
	}
	srNos := make([]string, 0, len(inputs))
	for i := range inputs {
		if err := s.validator.Struct(inputs[i]); err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid profile %s", inputs[i].SrNo))
		}
		srNos = append(srNos, inputs[i].SrNo)
	}
	taken, err := s.repo.ExistingSrNos(ctx, srNos)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check serial numbers")
	}

	var fresh []ProfileInput
	profiles := make([]models.StudentProfile, 0, len(inputs))
	for _, input := range inputs {
		if taken[input.SrNo] {
			continue
		}
		fresh = append(fresh, input)
		profiles = append(profiles, models.StudentProfile{
			SrNo:       input.SrNo,
			Name:       input.Name,
			DOB:        input.DOB,
			Address:    input.Address,
			Phone1:     input.FatherPhone,
			Phone2:     input.MotherPhone,
			FatherName: input.FatherName,
			MotherName: input.MotherName,
			FatherOcc:  input.FatherOcc,
			MotherOcc:  input.MotherOcc,
			Gender:     models.Gender(input.Gender),
		})
	}
	if len(profiles) == 0 {
		return 0, nil
	}
	if err := s.repo.CreateProfiles(ctx, profiles); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profiles")
	}
	for i, input := range fresh {
		if err := s.linkContacts(ctx, profiles[i].ID, input); err != nil {
			return 0, err
		}
	}
	s.logger.Info("profiles added", zap.Int("created", len(profiles)), zap.Int("skipped", len(inputs)-len(profiles)))
	return len(profiles), nil
}

// linkContacts creates or reuses a user per contact point and links
// each distinct user to the profile once.
func (s *StudentService) linkContacts(ctx context.Context, profileID string, input ProfileInput) error {
	linked := make(map[string]bool)
	link := func(userID string) error {
		if linked[userID] {
			return nil
		}
		linked[userID] = true
		if err := s.repo.LinkUser(ctx, profileID, userID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link contact")
		}
		return nil
	}
	for _, email := range input.Emails {
		email := strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		user, err := s.users.UpsertByEmail(ctx, &models.User{Name: input.Name, Email: &email, Role: models.RoleStudent})
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create contact user")
		}
		if err := link(user.ID); err != nil {
			return err
		}
	}
	phones := []struct{ name, phone string }{
		{input.FatherName, input.FatherPhone},
		{input.MotherName, input.MotherPhone},
	}
	for _, contact := range phones {
		if contact.phone == "" {
			continue
		}
		user, err := s.users.FindByEmailOrPhone(ctx, "", contact.phone)
		if err != nil {
			if err != sql.ErrNoRows {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up contact")
			}
			phone := contact.phone
			name := contact.name
			if name == "" {
				name = input.Name
			}
			user = &models.User{Name: name, Phone: &phone, Role: models.RoleStudent}
			if err := s.users.Create(ctx, user); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create contact user")
			}
		}
		if err := link(user.ID); err != nil {
			return err
		}
	}
	return nil
}

// Enroll registers a batch of students into the latest session. Every
// validation pass runs before any write; a failure in any pass rejects
// the whole batch.
func (s *StudentService) Enroll(ctx context.Context, entries []EnrollEntry) (int, error) {
	if len(entries) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "no entries supplied")
	}
	srNos := make([]string, 0, len(entries))
	seenSrNos := make(map[string]bool, len(entries))
	repeated := make(map[string]bool)
	for i := range entries {
		if err := s.validator.Struct(entries[i]); err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid entry %s", entries[i].SrNo))
		}
		if seenSrNos[entries[i].SrNo] {
			repeated[entries[i].SrNo] = true
		}
		seenSrNos[entries[i].SrNo] = true
		srNos = append(srNos, entries[i].SrNo)
	}
	if len(repeated) > 0 {
		repeats := make([]string, 0, len(repeated))
		for srNo := range repeated {
			repeats = append(repeats, srNo)
		}
		sort.Strings(repeats)
		return 0, appErrors.Clone(appErrors.ErrConflict, "duplicate serial numbers in batch: "+strings.Join(repeats, ", "))
	}
	term, err := s.terms.Latest(ctx)
	if err != nil {
		return 0, err
	}

	// Pass 1: every serial number must resolve to a profile.
	profiles, err := s.repo.FindProfilesBySrNos(ctx, srNos)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve profiles")
	}
	profileBySrNo := make(map[string]models.StudentProfile, len(profiles))
	for _, profile := range profiles {
		profileBySrNo[profile.SrNo] = profile
	}
	var missing []string
	for _, srNo := range srNos {
		if _, ok := profileBySrNo[srNo]; !ok {
			missing = append(missing, srNo)
		}
	}
	if len(missing) > 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "unknown serial numbers: "+strings.Join(missing, ", "))
	}

	// Pass 2: no profile may already hold an enrollment this session.
	enrolled, err := s.repo.EnrolledSrNos(ctx, term.ID, srNos)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollments")
	}
	var conflicts []string
	for _, srNo := range srNos {
		if enrolled[srNo] {
			conflicts = append(conflicts, srNo)
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return 0, appErrors.Clone(appErrors.ErrConflict, "already enrolled: "+strings.Join(conflicts, ", "))
	}

	// Pass 3: resolve every (grade, section) to its class. Grade
	// spellings alias ("9" and "NINTH" name the same class), so the
	// roll-number passes below key on the resolved class ID.
	classByKey := make(map[string]*models.Class)
	entryClasses := make([]*models.Class, len(entries))
	for i, entry := range entries {
		grade, err := models.ParseGrade(entry.Grade)
		if err != nil {
			return 0, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		key := string(grade) + "/" + entry.Section
		class, ok := classByKey[key]
		if !ok {
			class, err = s.classes.FindByGradeSection(ctx, term.ID, grade, entry.Section)
			if err != nil {
				if err == sql.ErrNoRows {
					return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %s %s not found", entry.Grade, entry.Section))
				}
				return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
			}
			classByKey[key] = class
		}
		entryClasses[i] = class
	}

	// Pass 4: no duplicate roll number within the batch per class.
	batchRolls := make(map[string]bool, len(entries))
	for i, entry := range entries {
		key := entryClasses[i].ID + "/" + entry.RollNo
		if batchRolls[key] {
			return 0, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("duplicate roll number %s in %s %s", entry.RollNo, entry.Grade, entry.Section))
		}
		batchRolls[key] = true
	}

	// Pass 5: no roll number may collide with an existing enrollment.
	for _, class := range classByKey {
		taken, err := s.repo.RollNosByClass(ctx, class.ID)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check roll numbers")
		}
		for i, entry := range entries {
			if entryClasses[i].ID == class.ID && taken[entry.RollNo] {
				return 0, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("roll number %s taken in %s %s", entry.RollNo, entry.Grade, entry.Section))
			}
		}
	}

	// Pass 6: every referenced group must exist.
	var groupIDs []string
	seenGroups := make(map[string]bool)
	for _, entry := range entries {
		if entry.GroupID != "" && !seenGroups[entry.GroupID] {
			seenGroups[entry.GroupID] = true
			groupIDs = append(groupIDs, entry.GroupID)
		}
	}
	if len(groupIDs) > 0 {
		existing, err := s.groups.ExistingGroupIDs(ctx, groupIDs)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check groups")
		}
		for _, id := range groupIDs {
			if !existing[id] {
				return 0, appErrors.Clone(appErrors.ErrNotFound, "unknown group: "+id)
			}
		}
	}

	// All checks passed; write the batch in one transaction.
	students := make([]models.Student, 0, len(entries))
	for i, entry := range entries {
		students = append(students, models.Student{
			ProfileID: profileBySrNo[entry.SrNo].ID,
			ClassID:   entryClasses[i].ID,
			RollNo:    entry.RollNo,
			GroupID:   entry.GroupID,
		})
	}
	if err := s.repo.BatchCreate(ctx, students); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll students")
	}
	s.logger.Info("students enrolled", zap.Int("count", len(students)), zap.String("session_id", term.ID))
	return len(students), nil
}

// UpdateStudent rewrites an enrollment's class, roll number and group,
// and links any new contact emails to the profile. The new roll number
// must be free in the target class.
func (s *StudentService) UpdateStudent(ctx context.Context, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}
	student, err := s.repo.FindStudent(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	for _, email := range req.Emails {
		email := strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		user, err := s.users.UpsertByEmail(ctx, &models.User{Name: "", Email: &email, Role: models.RoleStudent})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create contact user")
		}
		if err := s.repo.LinkUser(ctx, student.ProfileID, user.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link contact")
		}
	}
	if req.ClassID != "" {
		student.ClassID = req.ClassID
	}
	if req.RollNo != "" && req.RollNo != student.RollNo {
		taken, err := s.repo.RollNosByClass(ctx, student.ClassID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check roll numbers")
		}
		if taken[req.RollNo] {
			return nil, appErrors.Clone(appErrors.ErrConflict, "roll number already taken in class")
		}
		student.RollNo = req.RollNo
	}
	if req.GroupID != "" {
		existing, err := s.groups.ExistingGroupIDs(ctx, []string{req.GroupID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group")
		}
		if !existing[req.GroupID] {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown group: "+req.GroupID)
		}
		student.GroupID = req.GroupID
	}
	if err := s.repo.UpdateStudent(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// CurrentStudents lists every enrollment in the latest session with
// profile and class context.
func (s *StudentService) CurrentStudents(ctx context.Context) ([]models.StudentDetail, error) {
	term, err := s.terms.Latest(ctx)
	if err != nil {
		return nil, err
	}
	students, err := s.repo.ListBySession(ctx, term.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// StudentBySrNo returns the profile behind a serial number together
// with the marks recorded against each of its enrollments.
func (s *StudentService) StudentBySrNo(ctx context.Context, srNo string) (*StudentRecord, error) {
	profiles, err := s.repo.FindProfilesBySrNos(ctx, []string{srNo})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve profile")
	}
	if len(profiles) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown serial number: "+srNo)
	}
	detail, err := s.profileDetail(ctx, profiles[0])
	if err != nil {
		return nil, err
	}
	students, err := s.repo.StudentsByProfile(ctx, profiles[0].ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	record := &StudentRecord{ProfileDetail: *detail}
	for _, student := range students {
		marks, err := s.marks.MarksForStudent(ctx, student.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load marks")
		}
		record.Marks = append(record.Marks, marks...)
	}
	return record, nil
}

// Profiles returns every profile with linked users and enrollments.
func (s *StudentService) Profiles(ctx context.Context) ([]models.ProfileDetail, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}
	details := make([]models.ProfileDetail, 0, len(profiles))
	for _, profile := range profiles {
		detail, err := s.profileDetail(ctx, profile)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// Profile returns one profile with linked users and enrollments.
func (s *StudentService) Profile(ctx context.Context, id string) (*models.ProfileDetail, error) {
	profile, err := s.repo.FindProfileByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return s.profileDetail(ctx, *profile)
}

// UpdateProfile rewrites a profile's mutable fields.
func (s *StudentService) UpdateProfile(ctx context.Context, profile *models.StudentProfile) error {
	if _, err := s.repo.FindProfileByID(ctx, profile.ID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return nil
}

func (s *StudentService) profileDetail(ctx context.Context, profile models.StudentProfile) (*models.ProfileDetail, error) {
	users, err := s.repo.ListProfileUsers(ctx, profile.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profile users")
	}
	students, err := s.repo.StudentsByProfile(ctx, profile.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	var classIDs []string
	for _, student := range students {
		classIDs = append(classIDs, student.ClassID)
	}
	refs, err := s.classes.ListByIDs(ctx, classIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve classes")
	}
	return &models.ProfileDetail{StudentProfile: profile, Users: users, Enrollments: refs}, nil
}
