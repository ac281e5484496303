package testhelpers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/localnerve/authorizer-go"
	"github.com/stretchr/testify/require"
)

const (
	passwordLength  = 12
	passwordLower   = "abcdefghijklmnopqrstuvwxyz"
	passwordUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordSpecial = "!@#$%^&*"
	passwordDigits  = "0123456789"
)

func randIndex(n int) int {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}
	return int(i.Int64())
}

func pick(set string) byte {
	return set[randIndex(len(set))]
}

// GeneratePassword returns a password the authorizer accepts: at least one
// upper case letter, one digit and one special character.
func GeneratePassword() string {
	all := passwordLower + passwordUpper + passwordSpecial + passwordDigits

	password := []byte{pick(passwordUpper), pick(passwordSpecial), pick(passwordDigits)}
	for len(password) < passwordLength {
		password = append(password, pick(all))
	}
	for i := len(password) - 1; i > 0; i-- {
		j := randIndex(i + 1)
		password[i], password[j] = password[j], password[i]
	}
	return string(password)
}

// TestEmail makes a unique address for an account created by t
func TestEmail(t *testing.T) string {
	name := strings.ToLower(strings.NewReplacer("/", "-", " ", "-", "_", "-").Replace(t.Name()))
	return fmt.Sprintf("%s-%s@archhub.test", name, uuid.NewString()[:8])
}

// AcquireSession signs up an account with the given roles, logs it in and
// returns the session token
func AcquireSession(t *testing.T, authzURL, clientID, email, password string, roles []string) string {
	t.Helper()

	client, err := authorizer.NewAuthorizerClient(clientID, authzURL, "", nil)
	require.NoError(t, err, "create authorizer client")

	rolePtrs := make([]*string, len(roles))
	for i := range roles {
		rolePtrs[i] = &roles[i]
	}

	if _, err := client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
		Roles:           rolePtrs,
	}); err != nil {
		t.Logf("Signup of %s failed, trying login: %v", email, err)
	}

	res, err := client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	require.NoError(t, err, "login %s", email)
	require.NotNil(t, res.AccessToken, "access token for %s", email)

	return *res.AccessToken
}
