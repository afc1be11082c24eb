package api

// REST paths exposed by the commerce backend.
const (
	PathLogin         = "/user/login"
	PathSignUp        = "/user/sign_up"
	PathVerifyOTP     = "/user/verify_otp"
	PathLogout        = "/user/logout"
	PathProfile       = "/user/profile"
	PathProfileUpdate = "/user/profile_update"
	PathCartList      = "/user/cart/list"
	PathAddToCart     = "/user/cart/addToCart"
	PathUpdateCart    = "/user/cart/updateToCart"
	PathCheckCoupon   = "/user/coupon/check_valid_coupon"
)
