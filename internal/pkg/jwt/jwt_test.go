package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJWT(t *testing.T) {
	Convey("JWT 签发与校验", t, func() {
		j := NewJWT("secret", time.Hour)

		Convey("往返得到 user_id", func() {
			token, err := j.GenerateToken("u1")
			So(err, ShouldBeNil)

			claims, err := j.ValidateToken(token)
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, "u1")
		})

		Convey("密钥不同", func() {
			token, _ := NewJWT("other", time.Hour).GenerateToken("u1")
			_, err := j.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("已过期", func() {
			token, _ := NewJWT("secret", -time.Minute).GenerateToken("u1")
			_, err := j.ValidateToken(token)
			So(err, ShouldEqual, ErrExpiredToken)
		})

		Convey("只有 sub 的外部 token", func() {
			raw := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
				Subject:   "u-sub",
				ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
			})
			token, err := raw.SignedString([]byte("secret"))
			So(err, ShouldBeNil)

			claims, err := j.ValidateToken(token)
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, "u-sub")
		})

		Convey("垃圾输入", func() {
			_, err := j.ValidateToken("not-a-token")
			So(err, ShouldEqual, ErrInvalidToken)
		})
	})
}
