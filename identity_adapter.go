package auth

// UserIdentity adapts a stored user into the Identity interface for token issuance.
type UserIdentity struct {
	user *User
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

// ID returns the user's ID as a string.
func (u UserIdentity) ID() string {
	if u.user == nil {
		return ""
	}
	return u.user.ID.String()
}

// Email returns the user's email address.
func (u UserIdentity) Email() string {
	if u.user == nil {
		return ""
	}
	return u.user.Email
}

// Kind identifies the principal as an individual account.
func (u UserIdentity) Kind() string {
	return KindUser
}

// Role returns the user's role as a string.
func (u UserIdentity) Role() string {
	if u.user == nil {
		return ""
	}
	return string(u.user.Role)
}

// EmailVerified reports whether the user's email has been verified.
func (u UserIdentity) EmailVerified() bool {
	return u.user != nil && u.user.EmailVerified
}

var _ Identity = UserIdentity{}

// AcademyIdentity adapts a stored academy into the Identity interface.
// Academies are organization accounts and carry no role.
type AcademyIdentity struct {
	academy *Academy
}

// NewIdentityFromAcademy returns an Identity adapter for the provided academy.
func NewIdentityFromAcademy(academy *Academy) Identity {
	if academy == nil {
		return nil
	}
	return AcademyIdentity{academy: academy}
}

// ID returns the academy's ID as a string.
func (a AcademyIdentity) ID() string {
	if a.academy == nil {
		return ""
	}
	return a.academy.ID.String()
}

// Email returns the academy's email address.
func (a AcademyIdentity) Email() string {
	if a.academy == nil {
		return ""
	}
	return a.academy.Email
}

// Kind identifies the principal as an organization account.
func (a AcademyIdentity) Kind() string {
	return KindAcademy
}

// Role returns an empty string; academies have no role.
func (a AcademyIdentity) Role() string {
	return ""
}

// EmailVerified reports whether the academy's email has been verified.
func (a AcademyIdentity) EmailVerified() bool {
	return a.academy != nil && a.academy.EmailVerified
}

var _ Identity = AcademyIdentity{}
