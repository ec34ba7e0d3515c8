package subscribers

import (
	"errors"
	"time"
)

var ErrAlreadySubscribed = errors.New("email already subscribed")

type Subscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
