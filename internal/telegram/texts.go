package telegram

// welcomeText is sent once, when a chat first registers.
const welcomeText = "Привет! Я буду отправлять вам «Доброе утро» и «Доброй ночи» " +
	"каждый день в 9:00 и 21:00 по московскому времени. 🌅"
